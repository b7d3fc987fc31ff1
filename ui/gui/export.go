//go:build !js && !wasm

package gui

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sqweek/dialog"

	"evilboard/ui/svgr"
)

func (gp *GUIProcessing) export() {
	path, err := dialog.File().Filter("SVG image", "svg").Title("Export board").Save()
	if errors.Is(err, dialog.ErrCancelled) {
		return
	}
	if err != nil {
		gp.logx.Errorf("export dialog: %v", err)
		return
	}
	if err := gp.exportTo(path); err != nil {
		gp.logx.Errorf("%v", err)
		return
	}
	gp.logx.Infof("exported board to %s", path)
}

func (gp *GUIProcessing) exportTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()
	started := time.Now()
	if err := svgr.Render(f, gp.builder.Scene(), gp.size); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	gp.logx.Debugf("rendered export in %v", time.Since(started))
	return nil
}
