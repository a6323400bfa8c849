package main

import (
	"os"

	"github.com/scan-io-git/lint-audit/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
