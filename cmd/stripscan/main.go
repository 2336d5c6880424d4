// stripscan - test strip colour reader
//
// stripscan averages the colour of a photographed test strip and maps it to
// a concentration label from a reference table.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/stripscan/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
