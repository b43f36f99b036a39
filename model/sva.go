package model

import (
	"math"
	"strconv"
)

// SvaSegment is a tempo section whose normalized scroll speed falls outside
// the engine range and is corrected by a power-of-two tempo multiplier.
// EndTime is exclusive and +Inf when no later tempo marker exists.
type SvaSegment struct {
	StartTime  float64
	EndTime    float64
	Bpm        float64
	RawSv      float64
	Multiplier int
	IsHighSv   bool

	OldBpm        float64
	NewBpm        float64
	OldBeatLength float64
	NewBeatLength float64
	MergedCount   int
	InsertedCount int
}

func (s SvaSegment) OpenEnded() bool {
	return math.IsInf(s.EndTime, 1)
}

// Contains reports start <= t < end.
func (s SvaSegment) Contains(t float64) bool {
	return t >= s.StartTime && (s.OpenEnded() || t < s.EndTime)
}

func (s SvaSegment) Direction() string {
	if s.IsHighSv {
		return "hi"
	}
	return "lo"
}

// SvaWarning lists length dependent objects (sliders, spinners, holds)
// that overlap a corrected segment.
type SvaWarning struct {
	SegStart        float64
	SegEnd          float64
	Multiplier      int
	LongObjectCount int
	Samples         []string
}

// SvaEffectWarning flags a corrected segment with scroll speed effects.
type SvaEffectWarning struct {
	SegStart       float64
	SegEnd         float64
	Multiplier     int
	GreenlineCount int
	InsertedCount  int
	Samples        []string
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
