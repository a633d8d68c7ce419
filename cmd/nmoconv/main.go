// Command nmoconv loads and re-saves Nemo container files (.nmo/.cmo/
// .vmo), grounded on the teacher's pedumper.go cobra entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "nmoconv",
		Short: "Inspect and convert Nemo binary container files",
	}
	root.AddCommand(newConvertCmd(), newInspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
