package main

import (
	"os"

	"github.com/ariel-frischer/provecase/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
