package main

import (
	"os"

	"github.com/pixelsock/mtxconfig/cmd/mtxconfig/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
