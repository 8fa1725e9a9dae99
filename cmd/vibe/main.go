package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/daydemir/vibe/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, cli.ErrAborted) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
