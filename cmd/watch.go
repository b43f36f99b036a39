package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jsphweid/taikoshift/pipeline"
	"github.com/spf13/cobra"
)

var (
	watchOpts convertFlags
	watchOut  string
)

func init() {
	watchOpts.register(watchCmd)
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "output directory (default TAIKOSHIFT_OUTPUT_DIR, else next to each chart)")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Converts charts as they are saved",
	Long: `Watches a directory and converts every .osu chart written into it once the
editor has stopped writing (TAIKOSHIFT_WATCH_DEBOUNCE_MS).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := watchOpts.options(cmd)
		if err != nil {
			return err
		}
		out := cfg.OutputDir
		if cmd.Flags().Changed("out") {
			out = watchOut
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		wait := time.Duration(cfg.WatchDebounceMs) * time.Millisecond
		return pipeline.Watch(ctx, args[0], out, wait, opts, func(e pipeline.WatchEvent) {
			if e.Err != nil {
				fmt.Printf("failed: %s: %v\n", e.Input, e.Err)
				return
			}
			fmt.Printf("%s -> %s (%s)\n", e.Input, e.Output, pipeline.FormatElapsed(e.Result.Elapsed))
		})
	},
}
