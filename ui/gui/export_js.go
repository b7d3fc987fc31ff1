//go:build js || wasm

package gui

// export has no file dialog in the browser.
func (gp *GUIProcessing) export() {
	gp.logx.Warnf("svg export is not available in the browser")
}
