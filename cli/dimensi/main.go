// Package main is the CLI command itself.
package main

import (
	"log"
	"os"

	"github.com/UmeshNayak1/DimensiMeasure/cli"
)

func main() {
	if err := cli.NewApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
