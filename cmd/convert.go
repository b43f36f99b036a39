package cmd

import (
	"fmt"
	"strings"

	"github.com/jsphweid/taikoshift/pipeline"
	"github.com/spf13/cobra"
)

var (
	convertOpts   convertFlags
	convertOutput string
	convertQuiet  bool
	convertDetail bool
)

func init() {
	convertOpts.register(convertCmd)
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output path (default: next to the input)")
	convertCmd.Flags().BoolVarP(&convertQuiet, "quiet", "q", false, "only print the output path")
	convertCmd.Flags().BoolVar(&convertDetail, "decisions", false, "print every slider split decision")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <chart.osu>",
	Short: "Converts one chart",
	Long:  `Converts one osu!standard chart and writes the taiko chart next to it.`,
	Example: `  taikoshift convert "Artist - Title (mapper) [Hard].osu"
  taikoshift convert -c --sva --mode stable chart.osu -o out.osu`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := convertOpts.options(cmd)
		if err != nil {
			return err
		}
		res, out, err := pipeline.ConvertFile(args[0], convertOutput, opts)
		if err != nil {
			return err
		}
		if !convertQuiet {
			fmt.Println(strings.Join(res.Lines(), "\n"))
			if convertDetail {
				for _, l := range res.DecisionLines {
					fmt.Println("[Split] " + l)
				}
			}
			fmt.Printf("took %s\n", pipeline.FormatElapsed(res.Elapsed))
		}
		fmt.Println(out)
		return nil
	},
}
