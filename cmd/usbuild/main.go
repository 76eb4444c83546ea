// Package main is the entry point for the usbuild CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/opmodel/usbuild/internal/cmd"
)

func main() {
	err := cmd.NewRootCmd().Execute()
	if err == nil {
		return
	}

	var exitErr *cmd.ExitError
	if !errors.As(err, &exitErr) || !exitErr.Printed {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cmd.ExitCodeFromError(err))
}
