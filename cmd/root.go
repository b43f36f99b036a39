package cmd

import (
	"github.com/jsphweid/taikoshift/config"
	"github.com/jsphweid/taikoshift/logger"
	"github.com/jsphweid/taikoshift/pipeline"
	"github.com/spf13/cobra"
)

var cfg = config.FromEnv()

var rootCmd = &cobra.Command{
	Use:   "taikoshift",
	Short: "Converts osu!standard charts to osu!taiko",
	Long: `Converts osu!standard charts to osu!taiko, splitting sliders the way the
game does, optionally normalizing scroll speed and correcting sections whose
speed the stable client cannot render.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		return logger.InitLogger(logger.Config{
			Level:      cfg.LogLevel,
			Command:    cmd.Name(),
			File:       cfg.LogFile,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// convertFlags are shared by every command that converts.
type convertFlags struct {
	mode               string
	lazerSafe          bool
	constantSpeed      bool
	sva                bool
	fixMeter           bool
	clampBeatLength    bool
	simplifyExtreme    bool
	clampControlPoints bool
	strict             bool
}

func (f *convertFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.mode, "mode", "m", "", "output format: lazer, stable or original (default from TAIKOSHIFT_OUTPUT_MODE)")
	fs.BoolVar(&f.lazerSafe, "lazer-safe", false, "drop or clamp values lazer refuses to load")
	fs.BoolVarP(&f.constantSpeed, "constant-speed", "c", false, "normalize scroll speed to the most common BPM")
	fs.BoolVar(&f.sva, "sva", false, "correct out of range scroll speed with tempo multipliers (needs --constant-speed)")
	fs.BoolVar(&f.fixMeter, "sanitize-meter", false, "replace non-positive meters with 4")
	fs.BoolVar(&f.clampBeatLength, "sanitize-beatlength", false, "pull beat lengths into a finite range")
	fs.BoolVar(&f.simplifyExtreme, "simplify-extreme", false, "replace absurdly long or detailed sliders with a tiny straight one")
	fs.BoolVar(&f.clampControlPoints, "clamp-control-points", false, "clamp slider control points to the playfield")
	fs.BoolVar(&f.strict, "strict", false, "refuse charts that are not osu!standard")
}

func (f *convertFlags) options(cmd *cobra.Command) (pipeline.Options, error) {
	opts, err := pipeline.FromConfig(cfg)
	if err != nil {
		return opts, err
	}
	if cmd.Flags().Changed("mode") {
		if opts.OutputMode, err = pipeline.ParseOutputMode(f.mode); err != nil {
			return opts, err
		}
	}
	if cmd.Flags().Changed("lazer-safe") {
		opts.LazerSafe = f.lazerSafe
	}
	opts.ConstantSpeed = f.constantSpeed
	opts.Sva = f.sva && f.constantSpeed
	opts.FixMeter = f.fixMeter
	opts.ClampBeatLength = f.clampBeatLength
	opts.SimplifyExtreme = f.simplifyExtreme
	opts.ClampControlPoints = f.clampControlPoints
	opts.Strict = f.strict
	return opts, nil
}
