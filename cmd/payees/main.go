package main

import (
	"os"

	"github.com/R3E-Network/payee_manager/cmd/payees/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
