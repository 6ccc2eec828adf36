package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"reelcam/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode returns 2 for bad input (frames, config) and 1 for everything else.
func exitCode(err error) int {
	if services.IsValidation(err) {
		return 2
	}
	return 1
}
