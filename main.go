package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/thenoetrevino/kanbot/cmd"
	"github.com/thenoetrevino/kanbot/internal/cli"
)

func main() {
	err := cmd.Execute()
	if err == nil {
		return
	}

	var exitErr *cli.ExitCodeError
	if !errors.As(err, &exitErr) {
		// Cobra usage errors (unknown flag, missing required flag) land here
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitUsage)
	}
	os.Exit(exitErr.Code)
}
