package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/logger"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/sanitize"
	"github.com/jsphweid/taikoshift/speed"
	"github.com/jsphweid/taikoshift/split"
	"github.com/jsphweid/taikoshift/sva"
	"github.com/jsphweid/taikoshift/timing"
	"github.com/jsphweid/taikoshift/util"
)

var (
	ErrNotStandard  = errors.New("source chart is not osu!standard")
	ErrNoHitObjects = errors.New("source chart has no [HitObjects] section")
)

type Result struct {
	Text          string
	OutputVersion int

	SlidersBefore int
	SlidersAfter  int
	Split         int
	Kept          int
	Fallbacks     int
	Decisions     []model.SplitDecision
	DecisionLines []string

	Sanitize          model.SanitizeReport
	MeterFixes        int
	BeatLengthFixes   int
	Simplified        int
	ControlPointFixes int

	BaseBpm        float64
	ClampEvents    []model.ClampEvent
	Segments       []model.SvaSegment
	SvaApplied     bool
	Warnings       []model.SvaWarning
	EffectWarnings []model.SvaEffectWarning

	Diagnostics []string
	Elapsed     time.Duration
}

// Run converts a standard chart to taiko. Data problems never fail the
// run; they show up in the result instead. The source is parsed once and
// the converted document is serialized once at the end.
func Run(source string, opts Options) (*Result, error) {
	start := time.Now()
	res := &Result{}
	src := chart.Parse(source)

	if opts.Strict {
		if mode, ok := src.Mode(); ok && mode != constants.ModeStandard {
			return nil, fmt.Errorf("%w (Mode: %d)", ErrNotStandard, mode)
		}
		if !src.HasSection(constants.SectionHitObjects) {
			return nil, ErrNoHitObjects
		}
	}

	repaired := src.Clone()
	repair(repaired, opts, res)

	conv := opts.Converter
	if conv == nil {
		conv = ModeConverter{}
	}
	out, err := conv.Convert(repaired)
	if err != nil {
		return nil, fmt.Errorf("converting chart: %w", err)
	}
	res.SlidersBefore = out.CountSliders()

	decomposed := split.DecomposeDoc(out, split.Options{
		Timing:        timing.NewModel(timing.ParseLines(src.Body(constants.SectionTimingPoints), true)),
		FormatVersion: src.FormatVersion(),
		NoSplit:       res.Sanitize.NoSplit,
		Evaluator:     opts.Evaluator,
	})
	res.Split, res.Kept, res.Fallbacks = decomposed.Split, decomposed.Kept, decomposed.Fallbacks
	res.Decisions, res.DecisionLines = decomposed.Decisions, decomposed.DecisionLines
	res.Diagnostics = append(res.Diagnostics, decomposed.Diagnostics...)

	res.SlidersAfter = out.CountSliders()
	out.ForceBeatmapIDZero()
	out.AppendVersionSuffix(constants.TaikoConvertSuffix)

	// the converter may have dropped or merged scroll markers
	timing.ReplaceSection(out, src, func(body []string) []string {
		body = timing.ClampScrollLines(body)
		if opts.LazerSafe {
			body = sanitize.LazerSafeTiming(body)
		}
		return body
	})

	if opts.ConstantSpeed {
		out = applyConstantSpeed(out, opts, res)
	}

	res.OutputVersion = opts.OutputMode.Version(src.FormatVersion())
	out.SetFormatVersion(res.OutputVersion)
	if opts.LazerSafe {
		if dropped := sanitize.LazerSafeObjectsDoc(out); dropped > 0 {
			logger.Info("lazer-safe objects", logger.Int("fixed", dropped))
		}
	}

	if res.SvaApplied {
		res.Warnings = sva.LongObjectWarningsDoc(out, res.Segments, constants.SampleLimitLongObjects)
		res.EffectWarnings = sva.EffectWarningsDoc(out, res.Segments, constants.SampleLimitEffects)
	}

	res.Text = out.String()
	res.Elapsed = time.Since(start)
	logger.Info("converted",
		logger.String("mode", opts.OutputMode.String()),
		logger.Int("slidersBefore", res.SlidersBefore),
		logger.Int("slidersAfter", res.SlidersAfter),
		logger.Int("clampEvents", len(res.ClampEvents)),
		logger.Bool("sva", res.SvaApplied),
		logger.Duration("elapsed", res.Elapsed))
	return res, nil
}

// repair runs the enabled pre-conversion passes on doc. The slider repair
// always runs since its no-split set protects made-up lengths from
// decomposition.
func repair(doc *chart.Document, opts Options, res *Result) {
	if opts.FixMeter {
		res.MeterFixes = sanitize.FixMeterDoc(doc)
	}
	if opts.ClampBeatLength {
		res.BeatLengthFixes = sanitize.ClampBeatLengthRangeDoc(doc, opts.FloatMax, opts.FloatMin)
	}
	if opts.SimplifyExtreme {
		res.Simplified = sanitize.SimplifyExtremeSlidersDoc(doc)
	}
	if opts.ClampControlPoints {
		res.ControlPointFixes = sanitize.ClampControlPointsDoc(doc)
	}
	res.Sanitize = sanitize.SlidersDoc(doc, constants.SampleLimitSanitizer)

	if res.Sanitize.HasAnyFix() || res.MeterFixes+res.BeatLengthFixes+res.Simplified+res.ControlPointFixes > 0 {
		logger.Info("source repaired",
			logger.Int("meter", res.MeterFixes),
			logger.Int("beatLength", res.BeatLengthFixes),
			logger.Int("simplified", res.Simplified),
			logger.Int("controlPoints", res.ControlPointFixes),
			logger.Int("sliders", res.Sanitize.LinesTouched),
			logger.Int("noSplit", res.Sanitize.NoSplit.Len()))
	}
}

// applyConstantSpeed normalizes scroll speed on a copy of doc. With visual
// assist, segments are found and corrected on a separate unclamped copy,
// whose slider durations are then restored.
func applyConstantSpeed(doc *chart.Document, opts Options, res *Result) *chart.Document {
	out := doc.Clone()
	clamped := speed.NormalizeDoc(out, speed.Options{SvMin: opts.SvMin, SvMax: opts.SvMax, EmitClamp: true})
	res.BaseBpm = clamped.BaseBpm
	res.ClampEvents = clamped.Events

	if opts.Sva {
		baseline := doc.Clone()
		speed.NormalizeDoc(baseline, speed.Unclamped())
		if segs := sva.DetectDoc(baseline, opts.SvMin, opts.SvMax); len(segs) > 0 {
			for _, s := range segs {
				logger.Debug("visual assist segment", logger.String("segment", sva.FormatSegment(s)))
			}
			corrected := baseline.Clone()
			res.Segments, _ = sva.ApplyDoc(corrected, segs, opts.TimeTolerance)
			speed.ApplySliderDurationFixDoc(baseline, corrected)
			out = corrected
			res.SvaApplied = true
		}
	}

	suffix := constants.ConstantSpeedSuffix
	if res.SvaApplied {
		suffix = constants.ConstantSpeedAdjustedSuffix
	}
	out.AppendVersionSuffix(suffix)
	return out
}

// Lines renders the human-readable status of a run.
func (r *Result) Lines() []string {
	lines := []string{
		fmt.Sprintf("OutputVersion=%d", r.OutputVersion),
		fmt.Sprintf("PostProcess: sliders %d -> %d (split=%d kept=%d fallbacks=%d)", r.SlidersBefore, r.SlidersAfter, r.Split, r.Kept, r.Fallbacks),
	}
	for _, s := range r.Sanitize.Samples {
		lines = append(lines, "[Sanitize] "+s)
	}
	for _, e := range r.ClampEvents {
		lines = append(lines, speed.FormatClampEvent(e))
	}
	for _, s := range r.Segments {
		lines = append(lines, "[SVA] "+sva.FormatSegment(s))
	}
	lines = append(lines, r.WarningLines()...)
	return append(lines, r.Diagnostics...)
}

// OutputFileName derives the converted file name from the source's:
// the suffix goes inside the trailing "[difficulty]" when there is one.
func OutputFileName(input string, constantSpeed, adjusted bool) string {
	suffix := constants.TaikoConvertSuffix
	if constantSpeed {
		if adjusted {
			suffix += constants.ConstantSpeedAdjustedSuffix
		} else {
			suffix += constants.ConstantSpeedSuffix
		}
	}
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if i := strings.LastIndex(name, "]"); i >= 0 {
		name = name[:i] + suffix + name[i:]
	} else {
		name += suffix
	}
	return name + ".osu"
}

// ConvertFile converts in and writes the result atomically to out. An empty
// out writes next to the source under OutputFileName.
func ConvertFile(in, out string, opts Options) (*Result, string, error) {
	if out != "" {
		return convertTo(in, func(*Result) string { return out }, opts)
	}
	return ConvertIntoDir(in, filepath.Dir(in), opts)
}

// ConvertIntoDir writes the converted chart into dir under OutputFileName.
func ConvertIntoDir(in, dir string, opts Options) (*Result, string, error) {
	return convertTo(in, func(res *Result) string {
		return filepath.Join(dir, OutputFileName(in, opts.ConstantSpeed, res.SvaApplied))
	}, opts)
}

func convertTo(in string, target func(*Result) string, opts Options) (*Result, string, error) {
	text, err := chart.ReadFile(in)
	if err != nil {
		return nil, "", err
	}
	res, err := Run(text, opts)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", in, err)
	}
	out := target(res)
	if err := util.WriteFileAtomic(out, []byte(res.Text)); err != nil {
		return nil, "", err
	}
	return res, out, nil
}

// IsConvertedName reports file names produced by OutputFileName, so batch
// and watch runs do not convert their own output.
func IsConvertedName(path string) bool {
	return strings.Contains(filepath.Base(path), constants.TaikoConvertSuffix)
}
