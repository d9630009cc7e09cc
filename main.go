package main

import (
	"os"

	"github.com/abhisek/jarvis/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
