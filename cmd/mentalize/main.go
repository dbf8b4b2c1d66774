package main

import (
	"os"

	"github.com/Harshitk-cp/mentalize/cmd/mentalize/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
