package main

import (
	"os"

	"ordermetrics/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
