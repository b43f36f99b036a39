package sva

import (
	"fmt"
	"sort"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/timing"
	"github.com/jsphweid/taikoshift/util"
)

const (
	LongObjectNote = "In Stable-Visual Assist, BPM-doubling may change tick placement/feel for remaining sliders/drumrolls. " +
		"Consider splitting or accept visual compromise (aspire)."
	EffectNote = "SVA scales greenline beatLength by xMultiplier to match the doubled redline; " +
		"SV effects inside this segment will change visually."
)

type longObject struct {
	start, end float64
	raw        string
}

// LongObjectWarnings lists sliders, spinners and holds overlapping a
// corrected segment; their feel may change under the new tempo.
func LongObjectWarnings(text string, segments []model.SvaSegment, sampleLimit int) []model.SvaWarning {
	if len(segments) == 0 {
		return nil
	}
	return LongObjectWarningsDoc(chart.Parse(text), segments, sampleLimit)
}

func LongObjectWarningsDoc(doc *chart.Document, segments []model.SvaSegment, sampleLimit int) []model.SvaWarning {
	if len(segments) == 0 {
		return nil
	}
	var objects []longObject
	for _, line := range doc.Body(constants.SectionHitObjects) {
		if chart.IsSkippable(line) {
			continue
		}
		p := chart.Fields(line)
		if len(p) < 4 {
			continue
		}
		t0, ok := util.ParseFloat(p[2])
		if !ok {
			continue
		}
		typ, ok := util.ParseInt(p[3])
		if !ok || !chart.IsLengthDependent(typ) {
			continue
		}
		objects = append(objects, longObject{start: t0, end: estimateEnd(p, t0), raw: line})
	}

	var warnings []model.SvaWarning
	for _, seg := range segments {
		if seg.Multiplier <= 1 {
			continue
		}
		var hits []longObject
		for _, o := range objects {
			if overlaps(seg, o) {
				hits = append(hits, o)
			}
		}
		if len(hits) == 0 {
			continue
		}
		w := model.SvaWarning{
			SegStart:        seg.StartTime,
			SegEnd:          seg.EndTime,
			Multiplier:      seg.Multiplier,
			LongObjectCount: len(hits),
		}
		for i := 0; i < len(hits) && i < sampleLimit; i++ {
			w.Samples = append(w.Samples, hits[i].raw)
		}
		warnings = append(warnings, w)
	}
	return warnings
}

// overlaps reports whether o touches [start, end). An object whose end
// could not be read counts from its start alone.
func overlaps(seg model.SvaSegment, o longObject) bool {
	if !seg.OpenEnded() && o.start >= seg.EndTime {
		return false
	}
	return o.start >= seg.StartTime || o.end > seg.StartTime
}

// estimateEnd takes the first numeric field at or after the start among
// the last four, scanning backwards. Spinners and holds carry their end
// time there; otherwise the object is treated as instantaneous.
func estimateEnd(p []string, start float64) float64 {
	lo := len(p) - 4
	if lo < 0 {
		lo = 0
	}
	for k := len(p) - 1; k >= lo; k-- {
		if v, ok := util.ParseFloat(p[k]); ok && v >= start {
			return v
		}
	}
	return start
}

// EffectWarnings flags corrected segments carrying scroll speed effects
// (two or more scroll markers) or a scroll marker copied in by the apply.
func EffectWarnings(text string, segments []model.SvaSegment, sampleLimit int) []model.SvaEffectWarning {
	if len(segments) == 0 {
		return nil
	}
	return EffectWarningsDoc(chart.Parse(text), segments, sampleLimit)
}

func EffectWarningsDoc(doc *chart.Document, segments []model.SvaSegment, sampleLimit int) []model.SvaEffectWarning {
	if len(segments) == 0 {
		return nil
	}
	var greens []model.Marker
	for _, line := range doc.Body(constants.SectionTimingPoints) {
		if m, ok := timing.ParseMarker(line); ok && m.IsGreen() {
			greens = append(greens, m)
		}
	}
	sort.SliceStable(greens, func(i, j int) bool { return greens[i].Time < greens[j].Time })

	var warnings []model.SvaEffectWarning
	for _, seg := range segments {
		if seg.Multiplier <= 1 {
			continue
		}
		var inside []model.Marker
		for _, g := range greens {
			if seg.Contains(g.Time) {
				inside = append(inside, g)
			}
		}
		if len(inside) < 2 && seg.InsertedCount == 0 {
			continue
		}
		w := model.SvaEffectWarning{
			SegStart:       seg.StartTime,
			SegEnd:         seg.EndTime,
			Multiplier:     seg.Multiplier,
			GreenlineCount: len(inside),
			InsertedCount:  seg.InsertedCount,
		}
		for i := 0; i < len(inside) && i < sampleLimit; i++ {
			w.Samples = append(w.Samples, inside[i].Line())
		}
		warnings = append(warnings, w)
	}
	return warnings
}

func segmentRange(start, end float64) string {
	e := "INF"
	if !isOpen(end) {
		e = fmt.Sprint(util.RoundMs(end))
	}
	return fmt.Sprintf("t=%d..%s", util.RoundMs(start), e)
}

func isOpen(end float64) bool {
	return model.SvaSegment{EndTime: end}.OpenEnded()
}

// FormatWarning renders a long object warning as report lines.
func FormatWarning(w model.SvaWarning) []string {
	lines := []string{fmt.Sprintf("segment %s x%d longObjects=%d", segmentRange(w.SegStart, w.SegEnd), w.Multiplier, w.LongObjectCount)}
	for _, s := range w.Samples {
		lines = append(lines, "  sample: "+s)
	}
	return append(lines, "  note: "+LongObjectNote)
}

// FormatEffectWarning renders a scroll effect warning as report lines.
func FormatEffectWarning(w model.SvaEffectWarning) []string {
	lines := []string{
		fmt.Sprintf("segment %s x%d greenlines=%d inserted=%d", segmentRange(w.SegStart, w.SegEnd), w.Multiplier, w.GreenlineCount, w.InsertedCount),
		"  note: " + EffectNote,
	}
	for _, s := range w.Samples {
		lines = append(lines, "  green: "+s)
	}
	return lines
}
