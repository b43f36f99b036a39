package speed

import (
	"fmt"
	"strings"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/util"
)

func FormatClampEvent(e model.ClampEvent) string {
	return fmt.Sprintf("%s pass=%s t=%d bpm=%s rawSv=%s -> %s",
		constants.ClampLogPrefix,
		e.Pass,
		util.RoundMs(e.Time),
		util.FormatFloat(e.Bpm),
		util.FormatFloat(e.RawSv),
		util.FormatFloat(e.ClampedSv))
}

// ParseClampEvent reads a line written by FormatClampEvent.
func ParseClampEvent(line string) (model.ClampEvent, bool) {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, constants.ClampLogPrefix+" pass=") {
		return model.ClampEvent{}, false
	}
	tokens := strings.Fields(strings.TrimPrefix(t, constants.ClampLogPrefix))

	var e model.ClampEvent
	seen := 0
	for i, tok := range tokens {
		key, val, found := strings.Cut(tok, "=")
		if !found {
			if tok == "->" && i+1 < len(tokens) {
				if v, ok := util.ParseFloat(tokens[i+1]); ok {
					e.ClampedSv = v
					seen++
				}
			}
			continue
		}
		switch key {
		case "pass":
			e.Pass = val
			seen++
		case "t":
			if v, ok := util.ParseFloat(val); ok {
				e.Time = v
				seen++
			}
		case "bpm":
			if v, ok := util.ParseFloat(val); ok {
				e.Bpm = v
				seen++
			}
		case "rawSv":
			if v, ok := util.ParseFloat(val); ok {
				e.RawSv = v
				seen++
			}
		}
	}
	return e, seen == 5
}

// ParseClampEvents reads back the clamp log of a chart's [TimingPoints].
func ParseClampEvents(text string) []model.ClampEvent {
	return parseClampLines(chart.Parse(text).Body(constants.SectionTimingPoints))
}

func parseClampLines(body []string) []model.ClampEvent {
	var events []model.ClampEvent
	for _, line := range body {
		if e, ok := ParseClampEvent(line); ok {
			events = append(events, e)
		}
	}
	return events
}

type clampKey struct {
	time                  int64
	bpm, rawSv, clampedSv float64
}

func keyOf(e model.ClampEvent) clampKey {
	return clampKey{util.RoundMs(e.Time), e.Bpm, e.RawSv, e.ClampedSv}
}

// mergeClampLog keeps the prior log and appends the events it does not
// already hold. The pass is not part of the identity: a scroll marker
// inserted on one run is an existing one on the next.
func mergeClampLog(prior, events []model.ClampEvent) (fresh, logged []model.ClampEvent) {
	seen := util.NewSet[clampKey]()
	for _, e := range prior {
		seen.Add(keyOf(e))
	}
	logged = append(logged, prior...)
	for _, e := range events {
		if seen.Has(keyOf(e)) {
			continue
		}
		fresh = append(fresh, e)
		logged = append(logged, e)
	}
	return fresh, logged
}

// StripClampLog removes a previous clamp log, including the blank line
// written in front of its summary, so normalizing twice does not stack logs.
func StripClampLog(body []string) []string {
	out := make([]string, 0, len(body))
	for i, line := range body {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, constants.ClampLogPrefix) {
			continue
		}
		if t == "" && i+1 < len(body) && strings.TrimSpace(body[i+1]) == constants.ClampLogSummary {
			continue
		}
		out = append(out, line)
	}
	return out
}
