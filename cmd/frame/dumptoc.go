package main

import (
	"fmt"
	"os"

	"github.com/igwn/gwframe"
	"github.com/igwn/gwframe/toc"
	"github.com/spf13/cobra"
)

var channelKindNames = []struct {
	kind toc.ChannelKind
	name string
}{
	{toc.ChannelADC, "adc"},
	{toc.ChannelProc, "proc"},
	{toc.ChannelSim, "sim"},
	{toc.ChannelTable, "table"},
	{toc.ChannelEvent, "event"},
	{toc.ChannelSimEvent, "sim-event"},
}

func newDumpTOCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump-toc <file>",
		Short: "Print a frame file's table of contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ff, err := gwframe.Open(f)
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}

			for {
				fr, err := ff.NextFrame()
				if err != nil {
					return err
				}
				if fr == nil {
					break
				}
			}

			t := ff.TOC()
			if t == nil {
				return fmt.Errorf("%s: no table of contents", args[0])
			}

			fmt.Printf("frames: %d\n", t.FrameCount())
			for _, ck := range channelKindNames {
				names := t.ChannelNames(ck.kind)
				if len(names) == 0 {
					continue
				}
				fmt.Printf("%s channels:\n", ck.name)
				for _, name := range names {
					fmt.Printf("  %s\n", name)
				}
			}

			if names := t.DetectorNames(); len(names) > 0 {
				fmt.Println("detectors:")
				for _, name := range names {
					fmt.Printf("  %s\n", name)
				}
			}

			return nil
		},
	}

	return cmd
}
