// Package main is the entry point for the pydiff CLI tool.
package main

import (
	"github.com/pydiff/pydiff/internal/cmd"
)

func main() {
	cmd.Execute()
}
