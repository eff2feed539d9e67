package main

import (
	"os"

	"github.com/optiman/optiman/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
