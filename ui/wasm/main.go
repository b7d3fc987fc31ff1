//go:build js && wasm

package main

import (
	"fmt"

	"evilboard/src"
	"evilboard/src/logx"
	"evilboard/ui/gui"
	"evilboard/ui/raster"
)

func GetLogger() *logx.Logx {
	l := logx.NewLogx(
		logx.GetLoggerLevelByString("debug"),
		false,
		true,
	)
	l.InitLogger(nil)
	return l
}

func RunGUI() error {
	logger := GetLogger()
	vb := src.NewViewBuilder(logger)
	vb.CreateClassic()
	rr, err := raster.NewRenderer(raster.Options{})
	if err != nil {
		logger.Errorf("error init renderer: %v", err)
		return fmt.Errorf("error init renderer: %w", err)
	}
	return gui.NewGUI(vb, rr, 640, logger).Run()
}

func main() {
	if err := RunGUI(); err != nil {
		fmt.Println(err)
	}
}
