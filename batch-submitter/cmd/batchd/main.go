package main

import (
	"fmt"
	"os"

	"github.com/orbitrollup/batch-submitter/batch-submitter/cmd/batchd/daemon"
)

func main() {
	if err := daemon.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error while executing batchd CLI: %s", err.Error())
		os.Exit(1)
	}
}
