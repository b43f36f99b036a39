package timing

import (
	"math"
	"sort"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/util"
)

// Parse reads every [TimingPoints] record with at least a time and a beat
// length. Records without a readable column 7 count as tempo markers.
// Unreadable lines are skipped. The result is sorted by time with tempo
// markers first on ties.
func Parse(text string) []model.Marker {
	return ParseLines(chart.Parse(text).Body(constants.SectionTimingPoints), false)
}

// ParseStrict is Parse minus values the engine would ignore: non-finite
// beat lengths, tempo markers outside (0, 1e12] and scroll markers that are
// not negative.
func ParseStrict(text string) []model.Marker {
	return ParseLines(chart.Parse(text).Body(constants.SectionTimingPoints), true)
}

func ParseLines(body []string, strict bool) []model.Marker {
	var markers []model.Marker
	for _, line := range body {
		if chart.IsSkippable(line) {
			continue
		}
		p := chart.Fields(line)
		if len(p) < 2 {
			continue
		}
		tm, ok := util.ParseFloat(p[0])
		if !ok {
			continue
		}
		bl, ok := util.ParseFloat(p[1])
		if !ok {
			continue
		}

		uninherited := 1
		if len(p) >= 7 {
			if u, ok := util.ParseInt(p[6]); ok {
				uninherited = u
			}
		}

		if strict {
			if math.IsNaN(bl) || math.IsInf(bl, 0) {
				continue
			}
			if uninherited == 1 {
				if bl <= 0 || bl > constants.MaxTempoBeatLength {
					continue
				}
			} else if bl >= 0 {
				continue
			}
		}

		meter := 0
		if len(p) >= 3 {
			meter, _ = util.ParseInt(p[2])
		}
		markers = append(markers, model.Marker{
			Time:        tm,
			BeatLength:  bl,
			Meter:       meter,
			Uninherited: uninherited,
			Fields:      p,
		})
	}
	SortMarkers(markers)
	return markers
}

// SortMarkers orders by time, tempo before scroll on ties, otherwise stable.
func SortMarkers(markers []model.Marker) {
	sort.SliceStable(markers, func(i, j int) bool {
		a, b := markers[i], markers[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.Uninherited == 1 && b.Uninherited == 0
	})
}

// ParseMarker reads a full record: at least seven columns with numeric
// time, beat length and column 7.
func ParseMarker(line string) (model.Marker, bool) {
	if chart.IsSkippable(line) {
		return model.Marker{}, false
	}
	p := chart.Fields(line)
	if len(p) < 7 {
		return model.Marker{}, false
	}
	tm, ok := util.ParseFloat(p[0])
	if !ok {
		return model.Marker{}, false
	}
	bl, ok := util.ParseFloat(p[1])
	if !ok {
		return model.Marker{}, false
	}
	u, ok := util.ParseInt(p[6])
	if !ok {
		return model.Marker{}, false
	}
	meter, _ := util.ParseInt(p[2])
	return model.Marker{Time: tm, BeatLength: bl, Meter: meter, Uninherited: u, Fields: p}, true
}
