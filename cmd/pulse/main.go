// Command pulse studies and manages a local card deck from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

func main() {
	cmd := newRootCommand(afero.NewOsFs(), os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
