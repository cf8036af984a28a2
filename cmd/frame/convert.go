package main

import (
	"fmt"
	"os"

	"github.com/igwn/gwframe"
	"github.com/igwn/gwframe/framefile"
	"github.com/spf13/cobra"
)

// maxFrameHV1DataQuality is FrameHV1's DataQuality width limit: a frame
// whose quality word does not fit cannot be re-expressed at version 1.
const maxFrameHV1DataQuality = 0xFFFF

func newConvertCmd() *cobra.Command {
	var toVersion uint8

	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Rewrite a frame file, checking FrameH version compatibility",
		Long: "convert copies every frame from in to out. --to-version checks that each " +
			"frame's data-quality word still fits the requested FrameH version; the file " +
			"itself is always written in the current generation's wire layout.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if toVersion != 1 && toVersion != 2 {
				return fmt.Errorf("--to-version must be 1 or 2, got %d", toVersion)
			}

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			src, err := gwframe.Open(in)
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer out.Close()

			dst, err := gwframe.Create(out, framefile.WithSpecVersion(toVersion))
			if err != nil {
				return err
			}

			count := 0
			for {
				fr, err := src.NextFrame()
				if err != nil {
					return err
				}
				if fr == nil {
					break
				}

				if toVersion == 1 && fr.DataQuality > maxFrameHV1DataQuality {
					return fmt.Errorf("frame %d: data quality %d does not fit FrameH version 1", fr.FrameNumber, fr.DataQuality)
				}

				if err := dst.WriteFrame(fr); err != nil {
					return err
				}
				count++
			}

			if err := src.Close(); err != nil {
				return err
			}
			if err := dst.Close(); err != nil {
				return err
			}

			fmt.Printf("converted %d frame(s) to %s\n", count, args[1])
			return nil
		},
	}

	cmd.Flags().Uint8Var(&toVersion, "to-version", 2, "target FrameH version (1 or 2)")

	return cmd
}
