package main

import (
	"os"

	"github.com/bnema/stk-connect/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
