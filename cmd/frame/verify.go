package main

import (
	"fmt"
	"os"

	"github.com/igwn/gwframe"
	"github.com/igwn/gwframe/framefile"
	"github.com/spf13/cobra"
)

var verifyLevelNames = map[string]framefile.VerifyLevel{
	"checksums":     framefile.VerifyStructureChecksums,
	"file-checksum": framefile.VerifyFileChecksum,
	"vectors":       framefile.VerifyExpandabilityOfVectors,
	"toc":           framefile.VerifyCrossTOCConsistency,
}

func newVerifyCmd() *cobra.Command {
	var levelName string

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check a frame file's checksums and structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, ok := verifyLevelNames[levelName]
			if !ok {
				return fmt.Errorf("unknown verify level %q", levelName)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ff, err := gwframe.Open(f)
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}

			report, err := ff.Verify(level)
			if err != nil {
				return err
			}

			fmt.Printf("frames checked:     %d\n", report.FramesChecked)
			fmt.Printf("structures checked: %d\n", report.StructuresChecked)
			for _, u := range report.UnknownStructures {
				fmt.Printf("unknown structure: %s (offset %d, length %d)\n", u.Name, u.Offset, u.Length)
			}
			for _, e := range report.Errors {
				fmt.Printf("error: %v\n", e)
			}

			if !report.OK() {
				return fmt.Errorf("%s: %d error(s) found", args[0], len(report.Errors))
			}

			fmt.Println("OK")
			return nil
		},
	}

	cmd.Flags().StringVar(&levelName, "level", "toc", "verify level: checksums, file-checksum, vectors, toc")

	return cmd
}
