package main

import (
	"os"

	"github.com/leefowlercu/modorder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
