package cmd

import (
	"fmt"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/pipeline"
	"github.com/jsphweid/taikoshift/speed"
	"github.com/jsphweid/taikoshift/sva"
	"github.com/spf13/cobra"
)

var inspectDecisions bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectDecisions, "decisions", false, "print every slider split decision")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <chart.osu>",
	Short: "Inspects a chart",
	Long: `Prints what the converter sees in a chart: clamp log, visual assist
corrections already applied, sections that would need one and how sliders
would be split. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := chart.ReadFile(args[0])
		if err != nil {
			return err
		}
		opts, err := pipeline.FromConfig(cfg)
		if err != nil {
			return err
		}
		in := pipeline.Inspect(text, opts)

		fmt.Printf("format version: %d\n", in.FormatVersion)
		fmt.Printf("base BPM: %v\n", in.BaseBpm)
		fmt.Printf("sliders: %d (%d would split)\n", in.Sliders, in.Split)
		for _, e := range in.ClampEvents {
			fmt.Println(speed.FormatClampEvent(e))
		}
		for _, s := range in.Applied {
			fmt.Println("applied:   " + sva.FormatSegment(s))
		}
		for _, s := range in.Candidates {
			fmt.Println("candidate: " + sva.FormatSegment(s))
		}
		for _, w := range in.Warnings {
			for _, l := range sva.FormatWarning(w) {
				fmt.Println(l)
			}
		}
		for _, w := range in.EffectWarnings {
			for _, l := range sva.FormatEffectWarning(w) {
				fmt.Println(l)
			}
		}
		if inspectDecisions {
			for _, l := range in.DecisionLines {
				fmt.Println(l)
			}
		}
		return nil
	},
}
