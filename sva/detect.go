package sva

import (
	"fmt"
	"math"
	"sort"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/timing"
	"github.com/jsphweid/taikoshift/util"
)

// Detect finds the tempo sections whose scroll speed, relative to the
// first section, falls outside [svMin, svMax]. The chart is not modified.
func Detect(text string, svMin, svMax float64) []model.SvaSegment {
	return DetectDoc(chart.Parse(text), svMin, svMax)
}

func DetectDoc(doc *chart.Document, svMin, svMax float64) []model.SvaSegment {
	var reds, greens []model.Marker
	for _, line := range doc.Body(constants.SectionTimingPoints) {
		m, ok := timing.ParseMarker(line)
		if !ok {
			continue
		}
		if m.IsRed() {
			reds = append(reds, m)
		} else if m.IsGreen() {
			greens = append(greens, m)
		}
	}
	if len(reds) == 0 {
		return nil
	}
	byTime := func(ms []model.Marker) {
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].Time < ms[j].Time })
	}
	byTime(reds)
	byTime(greens)

	refSpeed := reds[0].Bpm() * scrollAt(reds[0].Time, greens)

	var segments []model.SvaSegment
	for i, red := range reds {
		end := math.Inf(1)
		if i+1 < len(reds) {
			end = reds[i+1].Time
		}
		bpm := red.Bpm()
		if !(bpm > 0) {
			continue
		}
		raw := refSpeed / bpm
		if !(raw > 0) || math.IsInf(raw, 0) {
			continue
		}

		seg := model.SvaSegment{StartTime: red.Time, EndTime: end, Bpm: bpm, RawSv: raw}
		switch {
		case raw > svMax:
			seg.Multiplier = HighMultiplier(raw, svMax)
			seg.IsHighSv = true
		case raw < svMin:
			seg.Multiplier = LowMultiplier(raw, svMin)
		default:
			continue
		}
		if seg.Multiplier > 1 {
			segments = append(segments, seg)
		}
	}
	return segments
}

// scrollAt is the speed of the last scroll marker at or before t.
func scrollAt(t float64, greens []model.Marker) float64 {
	sv := 1.0
	for _, g := range greens {
		if g.Time > t {
			break
		}
		sv = 100.0 / math.Abs(g.BeatLength)
	}
	return sv
}

// HighMultiplier is the smallest power of two m with rawSv/m <= svMax.
func HighMultiplier(rawSv, svMax float64) int {
	if !(rawSv > svMax) {
		return 1
	}
	return powerOfTwoAtLeast(rawSv / svMax)
}

// LowMultiplier is the smallest power of two m with rawSv*m >= svMin.
func LowMultiplier(rawSv, svMin float64) int {
	if !(rawSv > 0) || math.IsInf(rawSv, 0) || !(rawSv < svMin) {
		return 1
	}
	return powerOfTwoAtLeast(svMin / rawSv)
}

func powerOfTwoAtLeast(need float64) int {
	m := 1
	for float64(m) < need && m < constants.MaxMultiplier {
		m <<= 1
	}
	return m
}

// FormatSegment renders a segment for logs.
func FormatSegment(s model.SvaSegment) string {
	end := "INF"
	if !s.OpenEnded() {
		end = fmt.Sprint(util.RoundMs(s.EndTime))
	}
	return fmt.Sprintf("t=%d..%s BPM=%s rawSV=%s %s x%d",
		util.RoundMs(s.StartTime), end,
		util.FormatTrimmed(math.Round(s.Bpm*1000)/1000),
		util.FormatTrimmed(math.Round(s.RawSv*1000)/1000),
		s.Direction(), s.Multiplier)
}
