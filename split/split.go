package split

import (
	"fmt"
	"math"
	"sort"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/geometry"
	"github.com/jsphweid/taikoshift/logger"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/timing"
	"github.com/jsphweid/taikoshift/util"
)

type Options struct {
	// Timing used for every decision. The converted text may have lost
	// scroll markers, so callers pass the source's timing. nil or empty
	// falls back to the [TimingPoints] of the text being decomposed.
	Timing *timing.Model

	// FormatVersion of the source chart; 0 or less means 14.
	FormatVersion int

	// NoSplit holds start times of sliders repaired upstream. They are
	// always kept whole.
	NoSplit util.Set[int]

	// Evaluator measures slider paths. nil uses geometry.ExpectedLength.
	Evaluator geometry.Evaluator
}

type Result struct {
	Text      string
	Split     int // sliders replaced by hits
	Kept      int // sliders left whole by the decision or the no-split set
	Fallbacks int // sliders that should have split but produced no hits
	Decisions []model.SplitDecision
	// DecisionLines renders each decision with FormatDecision.
	DecisionLines []string
	Diagnostics   []string
}

// Decompose replaces every slider the engine would turn into hits with one
// circle per tick at the centre of the playfield. Everything else in
// [HitObjects] is written back untouched.
func Decompose(text string, opts Options) Result {
	doc := chart.Parse(text)
	if !doc.HasSection(constants.SectionHitObjects) {
		return Result{Text: text}
	}
	result := DecomposeDoc(doc, opts)
	result.Text = doc.String()
	return result
}

// DecomposeDoc is Decompose on a parsed chart, edited in place. Text is
// left empty in the result.
func DecomposeDoc(doc *chart.Document, opts Options) Result {
	var result Result
	body := doc.Body(constants.SectionHitObjects)
	if body == nil {
		return result
	}

	tm := opts.Timing
	if tm == nil || tm.Len() == 0 {
		tm = timing.NewModel(timing.ParseLines(doc.Body(constants.SectionTimingPoints), false))
	}
	ev := opts.Evaluator
	if ev == nil {
		ev = geometry.ExpectedLength{}
	}
	diff := doc.Difficulty()

	out := make([]string, 0, len(body))
	for _, line := range body {
		if chart.IsSkippable(line) {
			out = append(out, line)
			continue
		}
		s, ok := ParseSlider(line)
		if !ok {
			out = append(out, line)
			continue
		}
		if opts.NoSplit != nil && opts.NoSplit.Has(s.StartTime) {
			result.Kept++
			out = append(out, line)
			continue
		}

		calculated, distance := ev.Distance(geometry.ParseCurve(s.Curve, s.X, s.Y), s.PixelLength)
		d := Decide(s, distance, tm, diff, opts.FormatVersion)
		d.CalculatedDistance = calculated
		desc := FormatDecision(s, d, diff)
		result.Decisions = append(result.Decisions, d)
		result.DecisionLines = append(result.DecisionLines, desc)
		logger.Debug("split decision", logger.String("decision", desc))

		if !d.Split {
			result.Kept++
			out = append(out, line)
			continue
		}

		hits, ok := Events(s, d)
		if !ok {
			result.Fallbacks++
			msg := fmt.Sprintf("[SplitEmpty->KeepSlider] t=%d (no hits generated, keep raw slider)", s.StartTime)
			result.Diagnostics = append(result.Diagnostics, msg)
			logger.Warn("slider kept whole", logger.Int("t", s.StartTime), logger.Int("hits", len(hits)))
			out = append(out, line)
			continue
		}
		extras := s.Extras()
		for _, h := range hits {
			out = append(out, fmt.Sprintf("%d,%d,%d,1,%d,%s", constants.HitX, constants.HitY, h.Time, h.HitSound, extras))
		}
		result.Split++
	}

	doc.SetBody(constants.SectionHitObjects, out)
	return result
}

// Events generates the hits for a split slider: one per tick from the
// start to duration plus an eighth of a tick, hit sounds cycling through
// the edge sounds. Times are rounded half away from zero and never
// earlier than the start. ok is false when nothing was generated or the
// tick spacing would produce more than MaxHitsPerSlider hits.
func Events(s model.Slider, d model.SplitDecision) ([]model.HitEvent, bool) {
	edges := s.EdgeHitSounds
	if len(edges) == 0 {
		edges = []int{s.HitSound}
	}
	start := float64(s.StartTime)
	limit := start + float64(d.Duration) + d.TickSpacing/8

	var raw []float64
	var sounds []int
	node := 0
	for j := start; j <= limit; j += d.TickSpacing {
		if len(raw) >= constants.MaxHitsPerSlider {
			return nil, false
		}
		raw = append(raw, j)
		sounds = append(sounds, edges[node])
		node = (node + 1) % len(edges)
		if math.Abs(d.TickSpacing) < 1e-12 {
			break
		}
	}
	if len(raw) == 0 {
		return nil, false
	}

	hits := make([]model.HitEvent, len(raw))
	for i, t := range raw {
		t = math.Max(t, start)
		q := int(math.Round(t))
		if q < s.StartTime {
			q = s.StartTime
		}
		hits[i] = model.HitEvent{Time: q, HitSound: sounds[i]}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Time < hits[j].Time })
	return hits, true
}
