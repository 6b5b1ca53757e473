// Command vaultctl drives the client vault from a terminal: sign in, list,
// download and delete your assets, and manage client assets as an operator.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
