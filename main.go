package main

import (
	"os"

	"github.com/strideworks/sprintline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
