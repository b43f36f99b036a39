package pipeline

import (
	"fmt"
	"strings"

	"github.com/jsphweid/taikoshift/config"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/geometry"
)

// OutputMode selects the file format version written to the output.
type OutputMode int

const (
	Lazer OutputMode = iota
	Stable
	Original
)

func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lazer":
		return Lazer, nil
	case "stable":
		return Stable, nil
	case "original":
		return Original, nil
	}
	return Lazer, fmt.Errorf("unknown output mode %q (want lazer, stable or original)", s)
}

func (m OutputMode) String() string {
	switch m {
	case Stable:
		return "stable"
	case Original:
		return "original"
	default:
		return "lazer"
	}
}

// Version is the format version written for this mode; Original keeps the
// source's.
func (m OutputMode) Version(source int) int {
	switch m {
	case Stable:
		return constants.StableFormatVersion
	case Original:
		return source
	default:
		return constants.LazerFormatVersion
	}
}

type Options struct {
	OutputMode OutputMode
	LazerSafe  bool

	ConstantSpeed bool
	Sva           bool

	// pre-conversion repairs
	FixMeter           bool
	ClampBeatLength    bool
	SimplifyExtreme    bool
	ClampControlPoints bool

	SvMin         float64
	SvMax         float64
	TimeTolerance float64
	FloatMax      float64
	FloatMin      float64

	// Strict rejects sources that are not standard mode or have no objects.
	Strict bool

	// Converter turns the repaired source into a taiko chart. nil uses
	// ModeConverter.
	Converter Converter
	// Evaluator measures slider paths for the decomposer. nil uses
	// geometry.ExpectedLength.
	Evaluator geometry.Evaluator
}

func DefaultOptions() Options {
	return Options{
		OutputMode:    Lazer,
		SvMin:         constants.DefaultSvMin,
		SvMax:         constants.DefaultSvMax,
		TimeTolerance: constants.TimeToleranceMs,
		FloatMax:      constants.BeatLengthFloatMax,
		FloatMin:      constants.BeatLengthFloatMinPositive,
	}
}

// FromConfig starts from the defaults and applies the tunables of cfg.
func FromConfig(cfg *config.Config) (Options, error) {
	opts := DefaultOptions()
	if cfg == nil {
		return opts, nil
	}
	mode, err := ParseOutputMode(cfg.OutputMode)
	if err != nil {
		return opts, err
	}
	opts.OutputMode = mode
	opts.LazerSafe = cfg.LazerSafe
	opts.SvMin = cfg.SvMin
	opts.SvMax = cfg.SvMax
	opts.TimeTolerance = cfg.TimeTolerance
	opts.FloatMax = cfg.FloatMax
	opts.FloatMin = cfg.FloatMin
	if opts.SvMin < 0 || opts.SvMax <= opts.SvMin {
		return opts, fmt.Errorf("invalid scroll speed range [%v, %v]", opts.SvMin, opts.SvMax)
	}
	return opts, nil
}
