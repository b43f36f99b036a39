package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jsphweid/taikoshift/pipeline"
	"github.com/jsphweid/taikoshift/util"
	"github.com/spf13/cobra"
)

var (
	batchOpts    convertFlags
	batchOut     string
	batchMaxNum  int
	batchWorkers int
)

func init() {
	batchOpts.register(batchCmd)
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "output directory (default TAIKOSHIFT_OUTPUT_DIR, else next to each chart)")
	batchCmd.Flags().IntVarP(&batchMaxNum, "max", "n", 0, "convert at most this many charts (0: all)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "j", 0, "charts converted at once (0: one per CPU)")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:     "batch <dir>",
	Short:   "Converts every chart under a directory",
	Long:    `Converts every .osu chart found under a directory. Charts that fail are reported and skipped.`,
	Example: `  taikoshift batch ~/osu/Songs -o converted -c`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := batchOpts.options(cmd)
		if err != nil {
			return err
		}
		maxNum := cfg.MaxFilesPerBatch
		if cmd.Flags().Changed("max") {
			maxNum = batchMaxNum
		}
		out := cfg.OutputDir
		if cmd.Flags().Changed("out") {
			out = batchOut
		}

		paths, err := util.GatherAllChartPaths(args[0], maxNum)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		report, err := pipeline.RunBatch(ctx, pipeline.CreateJobs(paths), out, batchWorkers, opts)

		failed := util.GetKeys(report.Errors)
		sort.Strings(failed)
		for _, path := range failed {
			fmt.Printf("failed: %s: %v\n", path, report.Errors[path])
		}
		fmt.Printf("converted %d, failed %d, wrote %s in %s\n",
			report.Converted, report.Failed, humanize.Bytes(uint64(report.BytesWritten)), pipeline.FormatElapsed(report.Elapsed))
		return err
	},
}
