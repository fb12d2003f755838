package main

import (
	"os"

	"github.com/meigma/bundle/cmd/bundlectl/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		os.Exit(1)
	}
}
