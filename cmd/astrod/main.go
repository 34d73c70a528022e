package main

import (
	"os"

	"astrod/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
