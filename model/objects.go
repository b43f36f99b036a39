package model

import (
	"strings"

	"github.com/jsphweid/taikoshift/constants"
)

// Slider is a parsed slider record from [HitObjects].
type Slider struct {
	Raw           string
	Fields        []string
	X             int
	Y             int
	StartTime     int
	Type          int
	HitSound      int
	Curve         string
	CurveKind     byte
	RepeatCount   int
	PixelLength   float64
	EdgeHitSounds []int
}

// Extras returns the trailing hit sample columns, or the format default.
func (s Slider) Extras() string {
	if len(s.Fields) < 11 {
		return constants.DefaultHitExtras
	}
	return strings.Join(s.Fields[10:], ",")
}

type HitEvent struct {
	Time     int
	HitSound int
}

// SplitDecision keeps every intermediate of the slider split computation.
type SplitDecision struct {
	StartTime          int
	Spans              int
	CalculatedDistance float64
	Distance           float64

	TimingBeatLength        float64
	SliderVelocity          float64
	BpmMultiplier           float64
	SpeedAdjustedBeatLength float64
	BeatLength              float64

	ScaledDistance  float64
	ScoringDistance float64
	TaikoVelocity   float64
	Duration        int
	OsuVelocity     float64
	TickSpacing     float64

	Lhs   float64
	Rhs   float64
	Split bool
}
