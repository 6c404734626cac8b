// Command ordermind is the terminal client for an ordermind server.
package main

import (
	"fmt"
	"os"

	"ordermind/ordermind/utils/color"
	"ordermind/ordermind/utils/logging"
)

func main() {
	defer logging.Sync()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.ForWriter(os.Stderr).Error("Error: "+err.Error()))
		logging.Sync()
		os.Exit(1)
	}
}
