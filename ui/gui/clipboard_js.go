//go:build js || wasm

package gui

func (gp *GUIProcessing) copyFEN() {
	gp.logx.Infof("fen: %s", gp.builder.FEN())
}

func (gp *GUIProcessing) pasteFEN() bool { return false }
