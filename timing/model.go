package timing

import (
	"math"

	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/model"
)

// Model answers "what is active at time t" over a sorted marker snapshot.
type Model struct {
	markers []model.Marker
}

// NewModel copies and sorts markers.
func NewModel(markers []model.Marker) *Model {
	sorted := make([]model.Marker, len(markers))
	copy(sorted, markers)
	SortMarkers(sorted)
	return &Model{markers: sorted}
}

func (m *Model) Markers() []model.Marker {
	return m.markers
}

func (m *Model) Len() int {
	return len(m.markers)
}

// EffectiveTempoBeatLength returns the beat length of the last tempo marker
// at or before t, normalized so it is always finite and at least 1:
// NaN is ignored, infinity becomes 60000, negatives use their magnitude,
// anything below 1 (zero and denormals included) becomes 1. 500 when no
// tempo marker precedes t.
func (m *Model) EffectiveTempoBeatLength(t float64) float64 {
	cur := constants.DefaultTempoBeatLength
	for _, tp := range m.markers {
		if tp.Time > t {
			break
		}
		if !tp.IsTempo() {
			continue
		}
		bl := tp.BeatLength
		if math.IsNaN(bl) {
			continue
		}
		if math.IsInf(bl, 0) {
			bl = constants.SlowestTempoBeatLength
		}
		bl = math.Abs(bl)
		if bl < constants.Epsilon {
			bl = constants.FastestTempoBeatLength
		}
		if bl < constants.FastestTempoBeatLength {
			bl = constants.FastestTempoBeatLength
		}
		cur = bl
	}
	return cur
}

// EffectiveScrollMultiplier returns the scroll speed active at t. Crossing
// a tempo marker resets it to 1. A scroll marker's beat length is forced
// negative and into [-1000, -10] (infinities become -1000, near zero
// becomes -10; NaN is ignored), so the result is always within [0.1, 10].
func (m *Model) EffectiveScrollMultiplier(t float64) float64 {
	sv := 1.0
	for _, tp := range m.markers {
		if tp.Time > t {
			break
		}
		if tp.IsTempo() {
			sv = 1.0
			continue
		}
		if !tp.IsScroll() {
			continue
		}

		bl := tp.BeatLength
		if math.IsNaN(bl) {
			continue
		}
		if math.IsInf(bl, 0) {
			bl = constants.SlowestScrollBeatLength
		} else {
			bl = -math.Abs(bl)
			if math.Abs(bl) < constants.Epsilon {
				bl = constants.FastestScrollBeatLength
			}
			bl = math.Max(constants.SlowestScrollBeatLength, math.Min(constants.FastestScrollBeatLength, bl))
		}

		sv = -100.0 / bl
		if sv < constants.EngineSvMin {
			sv = constants.EngineSvMin
		}
		if sv > constants.EngineSvMax {
			sv = constants.EngineSvMax
		}
	}
	return sv
}

// TempoBeatLengthAt is the raw beat length of the last usable tempo marker
// at or before t, or NaN.
func (m *Model) TempoBeatLengthAt(t float64) float64 {
	cur := math.NaN()
	for _, tp := range m.markers {
		if tp.Time > t {
			break
		}
		if tp.IsRed() {
			cur = tp.BeatLength
		}
	}
	return cur
}

// ScrollAt is the raw scroll speed of the last usable scroll marker at or
// before t. Unlike EffectiveScrollMultiplier it does not reset on tempo
// markers and does not clamp. Defaults to 1.
func (m *Model) ScrollAt(t float64) float64 {
	sv := 1.0
	for _, tp := range m.markers {
		if tp.Time > t {
			break
		}
		if !tp.IsGreen() {
			continue
		}
		if math.Abs(tp.BeatLength) < 1e-12 {
			continue
		}
		sv = -100.0 / tp.BeatLength
	}
	if !(sv > 0) || math.IsInf(sv, 0) {
		return 1.0
	}
	return sv
}

// FirstTempo returns the earliest usable tempo marker.
func (m *Model) FirstTempo() (model.Marker, bool) {
	for _, tp := range m.markers {
		if tp.IsRed() {
			return tp, true
		}
	}
	return model.Marker{}, false
}
