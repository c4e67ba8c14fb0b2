// ABOUTME: Entry point for the schaidule CLI
// ABOUTME: Terminal client for SchAIdule course planning and schedule generation

package main

import (
	"fmt"
	"os"

	"github.com/schaidule/schaidule-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
