package main

import (
	"os"

	adgencmder "github.com/adgenius/adgen/cmd/adgen"
)

func main() {
	cmd := adgencmder.NewAdgenCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
