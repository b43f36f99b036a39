package speed

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

type Options struct {
	SvMin float64
	SvMax float64
	// EmitClamp enables clamping into [SvMin, SvMax] and the clamp log.
	EmitClamp bool
}

func DefaultOptions() Options {
	return Options{SvMin: constants.DefaultSvMin, SvMax: constants.DefaultSvMax, EmitClamp: true}
}

// Unclamped is the baseline used before visual assist: every scroll speed
// is kept exactly as computed.
func Unclamped() Options {
	return Options{SvMin: 0, SvMax: math.Inf(1), EmitClamp: false}
}

type Result struct {
	Text    string
	BaseBpm float64
	// Events are the clamps not already recorded in the chart's clamp log.
	Events []model.ClampEvent
	// Logged is the full clamp log written to the chart.
	Logged  []model.ClampEvent
	Applied bool
}

type indexedMarker struct {
	idx    int
	marker model.Marker
}

// Normalize rewrites scroll markers so every tempo section scrolls at the
// speed of the most common BPM, inserts a scroll marker on every tempo
// marker that has none and rescales slider lengths so their durations are
// unchanged. The text is returned untouched when there is no
// [TimingPoints] section or no usable BPM.
func Normalize(text string, opts Options) Result {
	doc := chart.Parse(text)
	res := NormalizeDoc(doc, opts)
	res.Text = text
	if res.Applied {
		res.Text = doc.String()
	}
	return res
}

// NormalizeDoc is Normalize on a parsed chart, edited in place. Text is
// left empty in the result.
func NormalizeDoc(doc *chart.Document, opts Options) Result {
	body := doc.Body(constants.SectionTimingPoints)
	if body == nil {
		return Result{}
	}
	prior := parseClampLines(body)
	body = StripClampLog(body)

	var entries []indexedMarker
	var markers []model.Marker
	for i, line := range body {
		if m, ok := timing.ParseMarker(line); ok {
			entries = append(entries, indexedMarker{idx: i, marker: m})
			markers = append(markers, m)
		}
	}
	tm := timing.NewModel(markers)

	baseBpm := mostCommonBpm(body)
	if !(baseBpm > 0) || math.IsInf(baseBpm, 0) {
		if first, ok := tm.FirstTempo(); ok {
			baseBpm = first.Bpm()
		}
	}
	if !(baseBpm > 0) {
		return Result{BaseBpm: baseBpm}
	}
	refSpeed := baseBpm

	var events []model.ClampEvent
	targetSv := func(pass string, t, bpm float64) float64 {
		raw := refSpeed / bpm
		if !opts.EmitClamp {
			return raw
		}
		if clamped, ok := clampSv(raw, opts.SvMin, opts.SvMax); ok {
			events = append(events, model.ClampEvent{Pass: pass, Time: t, Bpm: bpm, RawSv: raw, ClampedSv: clamped})
			return clamped
		}
		return raw
	}

	// existing scroll markers, in text order, each against the tempo marker above it
	currentRed := math.NaN()
	for _, e := range entries {
		m := e.marker
		if m.IsRed() {
			currentRed = m.BeatLength
			continue
		}
		if !m.IsGreen() || math.IsNaN(currentRed) {
			continue
		}
		bpm := 60000.0 / currentRed
		sv := targetSv(model.PassExistingGreen, m.Time, bpm)
		body[e.idx] = m.WithBeatLength(-100.0 / sv).Line()
	}

	// scroll markers for tempo markers standing alone
	greenTimes := util.NewSet[float64]()
	var redTimes []float64
	seenRed := util.NewSet[float64]()
	for _, e := range entries {
		if e.marker.IsGreen() {
			greenTimes.Add(e.marker.Time)
		}
		if e.marker.IsRed() && !seenRed.Has(e.marker.Time) {
			seenRed.Add(e.marker.Time)
			redTimes = append(redTimes, e.marker.Time)
		}
	}
	sort.Float64s(redTimes)

	inserts := make(map[int][]string)
	for _, t := range redTimes {
		if greenTimes.Has(t) {
			continue
		}
		bl := tm.TempoBeatLengthAt(t)
		if !(bl > 0) {
			continue
		}
		bpm := 60000.0 / bl
		sv := targetSv(model.PassInsertGreen, t, bpm)

		for _, e := range entries {
			if e.marker.IsRed() && e.marker.Time == t {
				green := e.marker.AsScroll().WithBeatLength(-100.0 / sv)
				inserts[e.idx] = append(inserts[e.idx], green.Line())
				break
			}
		}
	}
	if len(inserts) > 0 {
		withInserts := make([]string, 0, len(body)+len(inserts))
		for i, line := range body {
			withInserts = append(withInserts, line)
			withInserts = append(withInserts, inserts[i]...)
		}
		body = withInserts
	}

	if objects := doc.Body(constants.SectionHitObjects); objects != nil {
		objects = rescaleSliders(objects, func(t float64) (float64, bool) {
			bl := tm.TempoBeatLengthAt(t)
			if !(bl > 0) {
				return 0, false
			}
			oldSv := tm.ScrollAt(t)
			newSv := targetSv(model.PassSliderScale, t, 60000.0/bl)
			return newSv / oldSv, true
		})
		doc.SetBody(constants.SectionHitObjects, objects)
	}

	fresh, logged := mergeClampLog(prior, events)
	if len(logged) > 0 {
		body = append(body, "", constants.ClampLogSummary)
		for _, e := range logged {
			body = append(body, FormatClampEvent(e))
		}
	}
	if len(fresh) > 0 {
		logger.Debug("scroll speeds clamped",
			logger.Int("count", len(fresh)),
			logger.Float64("svMin", opts.SvMin),
			logger.Float64("svMax", opts.SvMax))
	}
	doc.SetBody(constants.SectionTimingPoints, body)

	return Result{BaseBpm: baseBpm, Events: fresh, Logged: logged, Applied: true}
}

// clampSv reports whether raw had to be pulled into [svMin, svMax]. Non
// positive and non finite speeds are never clamped; an infinite svMax
// disables the upper bound.
func clampSv(raw, svMin, svMax float64) (float64, bool) {
	if !(raw > 0) || math.IsInf(raw, 0) {
		return raw, false
	}
	if raw < svMin {
		return svMin, true
	}
	if !math.IsInf(svMax, 0) && raw > svMax {
		return svMax, true
	}
	return raw, false
}

// MostCommonBpm returns the BPM whose tempo sections last longest, or NaN.
// The open final section is not counted.
func MostCommonBpm(text string) float64 {
	body := chart.Parse(text).Body(constants.SectionTimingPoints)
	if body == nil {
		return math.NaN()
	}
	return mostCommonBpm(body)
}

func mostCommonBpm(body []string) float64 {
	var keys []float64
	dwell := make(map[float64]float64)

	lastBl, lastTime := math.NaN(), 0.0
	for _, line := range body {
		m, ok := timing.ParseMarker(line)
		if !ok || !m.IsRed() {
			continue
		}
		if !math.IsNaN(lastBl) {
			if dur := m.Time - lastTime; dur > 0 {
				key := math.RoundToEven(lastBl*1000) / 1000
				if _, seen := dwell[key]; !seen {
					keys = append(keys, key)
				}
				dwell[key] += dur
			}
		}
		lastBl, lastTime = m.BeatLength, m.Time
	}
	if len(keys) == 0 {
		return math.NaN()
	}

	best := keys[0]
	for _, k := range keys[1:] {
		if dwell[k] > dwell[best] {
			best = k
		}
	}
	return 60000.0 / best
}

// ApplySliderDurationFix rescales slider lengths in text so each slider
// keeps the duration it had under base. Used after visual assist changed
// tempo and scroll speed together.
func ApplySliderDurationFix(base, text string) string {
	doc := chart.Parse(text)
	if !ApplySliderDurationFixDoc(chart.Parse(base), doc) {
		return text
	}
	return doc.String()
}

// ApplySliderDurationFixDoc rescales the sliders of doc in place and
// reports whether it touched the chart.
func ApplySliderDurationFixDoc(base, doc *chart.Document) bool {
	before := timing.NewModel(sectionMarkers(base))
	after := timing.NewModel(sectionMarkers(doc))
	if before.Len() == 0 || after.Len() == 0 {
		return false
	}
	objects := doc.Body(constants.SectionHitObjects)
	if objects == nil {
		return false
	}

	objects = rescaleSliders(objects, func(t float64) (float64, bool) {
		blBase, blNew := before.TempoBeatLengthAt(t), after.TempoBeatLengthAt(t)
		if !(blBase > 0) || !(blNew > 0) {
			return 0, false
		}
		ratio := (blBase * after.ScrollAt(t)) / (blNew * before.ScrollAt(t))
		if !(ratio > 0) || math.IsInf(ratio, 0) {
			return 0, false
		}
		return ratio, true
	})
	doc.SetBody(constants.SectionHitObjects, objects)
	return true
}

func sectionMarkers(doc *chart.Document) []model.Marker {
	var markers []model.Marker
	for _, line := range doc.Body(constants.SectionTimingPoints) {
		if m, ok := timing.ParseMarker(line); ok {
			markers = append(markers, m)
		}
	}
	return markers
}

// rescaleSliders multiplies the pixel length of every slider by the ratio
// returned for its start time.
func rescaleSliders(objects []string, ratioAt func(t float64) (float64, bool)) []string {
	out := make([]string, len(objects))
	for i, line := range objects {
		out[i] = line
		if chart.IsSkippable(line) {
			continue
		}
		p := chart.Fields(line)
		if len(p) < 8 {
			continue
		}
		t, ok := util.ParseFloat(p[2])
		if !ok {
			continue
		}
		typ, ok := util.ParseInt(p[3])
		if !ok || !chart.IsSlider(typ) {
			continue
		}
		pixelLength, ok := util.ParseFloat(p[7])
		if !ok {
			continue
		}
		ratio, ok := ratioAt(t)
		if !ok {
			continue
		}
		p[7] = util.FormatFloat(pixelLength * ratio)
		out[i] = strings.Join(p, ",")
	}
	return out
}
