package main

import (
	"fmt"
	"os"

	"github.com/arawak/cameraroll/internal/config"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, loadApp, config.Load).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
