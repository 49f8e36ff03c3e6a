package main

import (
	"fmt"
	"os"

	"github.com/sandeepkv93/dayplan/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := cli.NewRootCommand(nil, version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dayplan failed: %v\n", err)
		os.Exit(1)
	}
}
