package main

import (
	"os"

	"github.com/adlytica/toolkit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
