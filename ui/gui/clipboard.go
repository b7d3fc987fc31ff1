//go:build !js && !wasm

package gui

import "github.com/atotto/clipboard"

// copyFEN puts the current position on the system clipboard.
func (gp *GUIProcessing) copyFEN() {
	if err := clipboard.WriteAll(gp.builder.FEN()); err != nil {
		gp.logx.Errorf("copy fen: %v", err)
	}
}

// pasteFEN loads a position from the clipboard; bad text keeps the board.
func (gp *GUIProcessing) pasteFEN() bool {
	text, err := clipboard.ReadAll()
	if err != nil {
		gp.logx.Errorf("paste fen: %v", err)
		return false
	}
	if err := gp.builder.CreateFromFEN(text); err != nil {
		gp.logx.Warnf("paste fen: %v", err)
		return false
	}
	return true
}
