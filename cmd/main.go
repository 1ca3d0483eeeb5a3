package main

import (
	"os"

	"github.com/txlens/txlens/cmd/txlens"
)

func main() {
	if err := txlens.Execute(); err != nil {
		os.Exit(1)
	}
}
