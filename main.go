package main

import (
	"fmt"
	"os"

	"github.com/rhodessheriff/sheriffd/cmd"
)

func main() {
	rootCmd := cmd.RootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
