package main

import (
	"os"

	"task-tracker-client/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
