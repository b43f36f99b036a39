package cmd

import (
	"fmt"
	"strings"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/preview"
	"github.com/spf13/cobra"
)

var previewOut string

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "output", "o", "", "output path (default: the chart path with .mid)")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview <chart.osu>",
	Short: "Renders a taiko chart as a MIDI drum track",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := chart.ReadFile(args[0])
		if err != nil {
			return err
		}
		out := previewOut
		if out == "" {
			out = strings.TrimSuffix(args[0], ".osu") + ".mid"
		}
		sum, err := preview.WriteFile(out, text)
		if err != nil {
			return err
		}
		fmt.Printf("%d notes (don %d, kat %d, roll %d, swell %d) at %v BPM -> %s\n",
			sum.Notes(), sum.Dons, sum.Kats, sum.Rolls, sum.Swells, sum.Bpm, out)
		return nil
	},
}
