package main

import (
	"os"

	"github.com/harrylevesque/rentnest/cmd/client/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
