package main

import (
	"os"

	"github.com/ankerfs/sftp/cmd/sftpcli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
