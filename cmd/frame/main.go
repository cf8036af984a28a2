// Command frame inspects and converts IGWD frame files: verifying their
// checksums and structure, dumping their table of contents, and checking
// whether a file's FrameH records could be represented at an older
// FrameH version.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "frame",
		Short: "Inspect and convert IGWD frame files",
		Long:  "frame reads and validates the frame file format: header, frame sequence, table of contents, and end-of-file trailer.",
	}

	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newDumpTOCCmd())
	rootCmd.AddCommand(newConvertCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
