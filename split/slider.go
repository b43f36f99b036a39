package split

import (
	"strings"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/util"
)

// ParseSlider reads a slider record. Records that are too short, are not
// sliders, or carry a non-integer start time, type or non-numeric pixel
// length are rejected and must be written back verbatim.
func ParseSlider(line string) (model.Slider, bool) {
	p := chart.Fields(line)
	if len(p) < 8 {
		return model.Slider{}, false
	}
	start, ok := util.ParseInt(p[2])
	if !ok {
		return model.Slider{}, false
	}
	typ, ok := util.ParseInt(p[3])
	if !ok || !chart.IsSlider(typ) {
		return model.Slider{}, false
	}
	pixelLength, ok := util.ParseFloat(p[7])
	if !ok {
		return model.Slider{}, false
	}

	repeats, ok := util.ParseInt(p[6])
	if !ok || repeats < 1 {
		repeats = 1
	}
	x, _ := util.ParseInt(p[0])
	y, _ := util.ParseInt(p[1])
	hitSound, _ := util.ParseInt(p[4])

	var kind byte
	if p[5] != "" {
		kind = strings.ToUpper(p[5][:1])[0]
	}

	var edges []int
	if len(p) >= 9 && strings.TrimSpace(p[8]) != "" {
		for _, tok := range strings.Split(p[8], "|") {
			v, _ := util.ParseInt(tok)
			edges = append(edges, v)
		}
	}
	if len(edges) == 0 {
		edges = []int{hitSound}
	}

	return model.Slider{
		Raw:           line,
		Fields:        p,
		X:             x,
		Y:             y,
		StartTime:     start,
		Type:          typ,
		HitSound:      hitSound,
		Curve:         p[5],
		CurveKind:     kind,
		RepeatCount:   repeats,
		PixelLength:   pixelLength,
		EdgeHitSounds: edges,
	}, true
}
