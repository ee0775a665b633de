package main

import (
	"os"

	"github.com/rustyeddy/stockwatch/cmd/stockwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
