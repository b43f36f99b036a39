package sva

import (
	"math"
	"sort"
	"strings"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/logger"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/timing"
	"github.com/jsphweid/taikoshift/util"
)

type ApplyResult struct {
	Text string
	// Segments are the input segments with the bookkeeping of the apply
	// filled in (old/new tempo, merged and inserted counts).
	Segments []model.SvaSegment
}

type tempoChange struct {
	oldBpm, newBpm float64
	oldBl, newBl   float64
}

// Apply corrects each segment by rewriting its tempo marker to bpm*m (high
// speed) or bpm/m (low speed) and scaling the scroll markers inside it the
// other way, so the rendered speed is unchanged while every scroll value
// fits the engine range. Tempo markers within tolerance of a segment start
// are merged into the textually last one. Segments without a scroll marker
// at their start get a copy of the previous one. A marker block records
// what was done so the segments can be recovered later.
func Apply(text string, segments []model.SvaSegment, tolerance float64) ApplyResult {
	doc := chart.Parse(text)
	applied, changed := ApplyDoc(doc, segments, tolerance)
	result := ApplyResult{Text: text, Segments: applied}
	if changed {
		result.Text = doc.String()
	}
	return result
}

// timingLine is a [TimingPoints] line read once. timed is set for records
// whose first field is a number; ok for readable markers.
type timingLine struct {
	text   string
	fields int
	time   float64
	timed  bool
	marker model.Marker
	ok     bool
}

func readTimingLine(line string) timingLine {
	l := timingLine{text: line}
	if chart.IsSkippable(line) {
		return l
	}
	p := chart.Fields(line)
	l.fields = len(p)
	l.time, l.timed = util.ParseFloat(p[0])
	l.marker, l.ok = timing.ParseMarker(line)
	return l
}

func (l *timingLine) set(m model.Marker) {
	l.marker = m
	l.text = m.Line()
}

// ApplyDoc is Apply on a parsed chart, edited in place. It returns the
// segments with their bookkeeping and whether the chart changed.
func ApplyDoc(doc *chart.Document, segments []model.SvaSegment, tolerance float64) ([]model.SvaSegment, bool) {
	applied := append([]model.SvaSegment(nil), segments...)
	if len(segments) == 0 {
		return applied, false
	}
	body := doc.Body(constants.SectionTimingPoints)
	if body == nil {
		return applied, false
	}
	body = stripMarkerBlock(body)
	lines := make([]timingLine, len(body))
	var reds []int
	for i, line := range body {
		lines[i] = readTimingLine(line)
		if lines[i].ok && lines[i].marker.IsRed() {
			reds = append(reds, i)
		}
	}
	if len(reds) == 0 {
		return applied, false
	}

	changes := make(map[int64]tempoChange)
	merged := make(map[int64]int)
	inserted := make(map[int64]int)

	// latest segment first
	order := make([]model.SvaSegment, len(segments))
	copy(order, segments)
	sort.SliceStable(order, func(i, j int) bool { return order[i].StartTime > order[j].StartTime })

	removed := util.NewSet[int]()
	for _, seg := range order {
		if seg.Multiplier <= 1 {
			continue
		}
		var same []int
		for _, i := range reds {
			if !removed.Has(i) && math.Abs(lines[i].marker.Time-seg.StartTime) <= tolerance {
				same = append(same, i)
			}
		}
		if len(same) == 0 {
			continue
		}
		sort.Sort(sort.Reverse(sort.IntSlice(same)))

		keep := &lines[same[0]]
		key := util.RoundMs(seg.StartTime)
		oldBl := keep.marker.BeatLength
		newBl := oldBl * float64(seg.Multiplier)
		if seg.IsHighSv {
			newBl = oldBl / float64(seg.Multiplier)
		}
		changes[key] = tempoChange{oldBpm: 60000.0 / oldBl, newBpm: 60000.0 / newBl, oldBl: oldBl, newBl: newBl}
		merged[key] += len(same) - 1

		keep.set(keep.marker.WithBeatLength(newBl))
		for _, i := range same[1:] {
			removed.Add(i)
		}
	}
	if removed.Len() > 0 {
		kept := lines[:0:0]
		for i, l := range lines {
			if !removed.Has(i) {
				kept = append(kept, l)
			}
		}
		lines = kept
	}

	// scroll marker at every segment start
	greenTimes := util.NewSet[int64]()
	for _, l := range lines {
		if l.ok && l.marker.IsGreen() {
			greenTimes.Add(util.RoundMs(l.marker.Time))
		}
	}
	for _, seg := range segments {
		key := util.RoundMs(seg.StartTime)
		if greenTimes.Has(key) {
			continue
		}
		prev, ok := previousScroll(lines, seg.StartTime)
		if !ok {
			logger.Warn("no previous scroll marker to copy", logger.Int64("t", key))
			continue
		}
		at := insertionPoint(lines, seg.StartTime)
		copied := readTimingLine(prev.WithTime(key).Line())
		lines = append(lines[:at], append([]timingLine{copied}, lines[at:]...)...)
		greenTimes.Add(key)
		inserted[key]++
	}

	// scale scroll markers against the tempo change
	for i := range lines {
		l := &lines[i]
		if !l.ok || !l.marker.IsGreen() {
			continue
		}
		for _, seg := range segments {
			if seg.Multiplier <= 1 || !seg.Contains(l.marker.Time) {
				continue
			}
			bl := l.marker.BeatLength / float64(seg.Multiplier)
			if seg.IsHighSv {
				bl = l.marker.BeatLength * float64(seg.Multiplier)
			}
			l.set(l.marker.WithBeatLength(bl))
		}
	}

	for i := range applied {
		s := &applied[i]
		key := util.RoundMs(s.StartTime)
		if c, ok := changes[key]; ok {
			s.OldBpm, s.NewBpm = c.oldBpm, c.newBpm
			s.OldBeatLength, s.NewBeatLength = c.oldBl, c.newBl
		}
		s.MergedCount = merged[key]
		s.InsertedCount = inserted[key]
	}

	body = make([]string, 0, len(lines)+len(applied)+3)
	for _, l := range lines {
		body = append(body, l.text)
	}
	if len(body) > 0 && strings.TrimSpace(body[len(body)-1]) != "" {
		body = append(body, "")
	}
	body = append(body, constants.SvaMarkerHeader)
	ascending := make([]model.SvaSegment, len(applied))
	copy(ascending, applied)
	sort.SliceStable(ascending, func(i, j int) bool { return ascending[i].StartTime < ascending[j].StartTime })
	for _, s := range ascending {
		if _, ok := changes[util.RoundMs(s.StartTime)]; !ok {
			continue
		}
		body = append(body, EncodeMarker(s))
	}
	body = append(body, "")

	body = SortTimingLines(body)
	if len(body) > 0 && strings.TrimSpace(body[len(body)-1]) != "" {
		body = append(body, "")
	}
	doc.SetBody(constants.SectionTimingPoints, body)

	logger.Info("visual assist applied",
		logger.Int("segments", len(changes)),
		logger.Int("insertedScroll", len(inserted)))
	return applied, true
}

// previousScroll returns the latest scroll marker at or before t, reading
// the section in text order until the first record past t.
func previousScroll(lines []timingLine, t float64) (model.Marker, bool) {
	var best model.Marker
	found := false
	bestTime := math.Inf(-1)
	for _, l := range lines {
		if l.fields < 7 || !l.timed {
			continue
		}
		if l.time > t {
			break
		}
		if l.ok && l.marker.IsGreen() && l.marker.Time >= bestTime {
			best, bestTime, found = l.marker, l.marker.Time, true
		}
	}
	return best, found
}

// insertionPoint is the index of the first record later than t, or the end
// of the section.
func insertionPoint(lines []timingLine, t float64) int {
	for i, l := range lines {
		if l.timed && l.time > t {
			return i
		}
	}
	return len(lines)
}

type timingBlock struct {
	time  float64
	rank  int
	bl    float64
	lines []string
}

// SortTimingLines orders a [TimingPoints] body by time, tempo before
// scroll before anything else, and larger tempo beat length first. Blank,
// comment and unreadable lines move with the record that follows them;
// trailing ones stay at the end.
func SortTimingLines(body []string) []string {
	var blocks []timingBlock
	var pending []string
	for _, line := range body {
		if chart.IsSkippable(line) {
			pending = append(pending, line)
			continue
		}
		m, ok := timing.ParseMarker(line)
		if !ok {
			pending = append(pending, line)
			continue
		}
		rank := 2
		switch m.Uninherited {
		case 1:
			rank = 0
		case 0:
			rank = 1
		}
		blocks = append(blocks, timingBlock{time: m.Time, rank: rank, bl: m.BeatLength, lines: append(pending, line)})
		pending = nil
	}
	if len(pending) > 0 {
		blocks = append(blocks, timingBlock{time: math.Inf(1), rank: 2, lines: pending})
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.time != b.time {
			return a.time < b.time
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.rank == 0 && a.bl > b.bl
	})

	out := make([]string, 0, len(body))
	for _, b := range blocks {
		out = append(out, b.lines...)
	}
	return out
}

// stripMarkerBlock drops a marker block left by an earlier apply together
// with one of the blank lines around it.
func stripMarkerBlock(body []string) []string {
	out := make([]string, 0, len(body))
	dropped := false
	for _, line := range body {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, constants.SvaMarkerPrefix) {
			dropped = true
			continue
		}
		if dropped && t == "" && len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
			dropped = false
			continue
		}
		dropped = false
		out = append(out, line)
	}
	return out
}
