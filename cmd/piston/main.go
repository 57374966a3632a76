package main

import (
	"os"

	"github.com/nuclio/errors"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		errors.PrintErrorStack(os.Stderr, err, 5)

		os.Exit(1)
	}
}
