package main

import (
	"fmt"
	"os"

	"github.com/roach88/fprecon/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fprecon:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
