package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			// Interrupted mid-pass (ctrl-c during watch); nothing to report.
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "driftwatch:", err)
		os.Exit(1)
	}
}
