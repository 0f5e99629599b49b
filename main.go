package main

import (
	"BTreeIdx/cli"
	"os"
)

func main() {
	os.Exit(cli.New(os.Stdin, os.Stdout).Run(os.Args[1:]))
}
