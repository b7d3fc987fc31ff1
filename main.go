package main

import (
	"fmt"
	"os"

	"evilboard/ui"
)

func main() {
	if err := ui.RunEvilBoard(); err != nil {
		fmt.Fprintf(os.Stderr, "evilboard: %v\n", err)
		os.Exit(1)
	}
}
