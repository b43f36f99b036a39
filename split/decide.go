package split

import (
	"fmt"
	"math"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/timing"
	"github.com/jsphweid/taikoshift/util"
)

// Decide runs the engine's slider-to-hits test for s. distance is the path
// length already fitted to the declared pixel length. The engine works
// partly in single precision; every step here widens the same float32
// values in the same order so boundary cases land on the same side.
func Decide(s model.Slider, distance float64, tm *timing.Model, diff chart.Difficulty, version int) model.SplitDecision {
	if version <= 0 {
		version = constants.DefaultFormatVersion
	}
	d := model.SplitDecision{
		StartTime: s.StartTime,
		Spans:     s.RepeatCount,
		Distance:  distance,
	}
	if d.Spans < 1 {
		d.Spans = 1
	}
	start := float64(s.StartTime)

	d.TimingBeatLength = tm.EffectiveTempoBeatLength(start)
	d.SliderVelocity = math.Max(1e-9, tm.EffectiveScrollMultiplier(start))

	d.BpmMultiplier = 1
	if svAsBeatLength := -100 / d.SliderVelocity; svAsBeatLength < 0 {
		d.BpmMultiplier = float64(util.Clamp(float32(-svAsBeatLength), 10, 10000)) / 100.0
	}
	d.SpeedAdjustedBeatLength = d.TimingBeatLength * d.BpmMultiplier
	d.BeatLength = d.SpeedAdjustedBeatLength
	if version >= 8 {
		d.BeatLength = d.TimingBeatLength
	}

	// two separate steps; folding them changes the rounding
	dist := distance
	dist *= float64(constants.VelocityMultiplier)
	dist *= float64(d.Spans)
	d.ScaledDistance = dist

	d.ScoringDistance = float64(constants.BaseScoringDistance) * (diff.SliderMultiplier * float64(constants.VelocityMultiplier)) / diff.SliderTickRate
	d.TaikoVelocity = d.ScoringDistance * diff.SliderTickRate
	d.Duration = truncInt32(dist / d.TaikoVelocity * d.SpeedAdjustedBeatLength)
	d.OsuVelocity = d.TaikoVelocity * (1000.0 / d.SpeedAdjustedBeatLength)

	d.TickSpacing = math.Min(d.BeatLength/diff.SliderTickRate, float64(d.Duration)/float64(d.Spans))

	d.Lhs = dist / d.OsuVelocity * 1000
	d.Rhs = 2 * d.BeatLength
	d.Split = d.TickSpacing > 0 && d.Lhs < d.Rhs
	return d
}

// truncInt32 converts like a 32-bit integer cast on x86: NaN and values
// out of range become math.MinInt32.
func truncInt32(v float64) int {
	if math.IsNaN(v) || v >= math.MaxInt32+1 || v <= math.MinInt32-1 {
		return math.MinInt32
	}
	return int(int32(v))
}

// FormatDecision renders every intermediate of a decision on one line.
func FormatDecision(s model.Slider, d model.SplitDecision, diff chart.Difficulty) string {
	kind := "?"
	if s.CurveKind != 0 {
		kind = string(s.CurveKind)
	}
	split := 0
	if d.Split {
		split = 1
	}
	return fmt.Sprintf("t=%d type=%s spans=%d px=%.6f calc=%.6f path=%.6f "+
		"BL=%.6f sv=%.6f bpmMul=%.6f BL0=%.6f BLcmp=%.6f SM=%.6f TR=%.6f "+
		"dist=%.6f spd=%.6f tv=%.6f dur=%d osuVel=%.12f tick=%.12f lhs=%.12f rhs=%.12f diff=%+.12f -> split=%d",
		d.StartTime, kind, d.Spans, s.PixelLength, d.CalculatedDistance, d.Distance,
		d.TimingBeatLength, d.SliderVelocity, d.BpmMultiplier, d.SpeedAdjustedBeatLength, d.BeatLength,
		diff.SliderMultiplier, diff.SliderTickRate,
		d.ScaledDistance, d.ScoringDistance, d.TaikoVelocity, d.Duration,
		d.OsuVelocity, d.TickSpacing, d.Lhs, d.Rhs, d.Lhs-d.Rhs, split)
}
