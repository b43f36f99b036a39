package timing

import (
	"math"
	"strings"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/util"
)

// ClampScrollLines prepares source timing lines for the converted chart.
// Records with eight columns get a usable meter, non-finite beat lengths
// are dropped and scroll markers are pulled into the engine scroll range.
// Everything else is kept as is.
func ClampScrollLines(body []string) []string {
	out := make([]string, 0, len(body))
	for _, line := range body {
		if strings.TrimSpace(line) == "" {
			out = append(out, line)
			continue
		}
		p := chart.Fields(line)
		if len(p) < 8 {
			out = append(out, line)
			continue
		}

		meterFixed := false
		if m, ok := util.ParseInt(p[2]); ok && m <= 0 {
			p[2] = "4"
			meterFixed = true
		}
		keep := func() {
			if meterFixed {
				out = append(out, strings.Join(p, ","))
			} else {
				out = append(out, line)
			}
		}

		bl, ok := util.ParseFloat(p[1])
		if !ok {
			keep()
			continue
		}
		if math.IsNaN(bl) || math.IsInf(bl, 0) {
			continue
		}
		u, ok := util.ParseInt(p[6])
		if !ok || u != 0 || bl > 0 {
			keep()
			continue
		}

		sv := math.Inf(-1)
		if bl != 0 {
			sv = -100.0 / bl
		}
		sv = util.Clamp(sv, constants.EngineSvMin, constants.EngineSvMax)
		p[1] = util.FormatFloat(-100.0 / sv)
		out = append(out, strings.Join(p, ","))
	}
	return out
}

// ReplaceSection copies the [TimingPoints] body of src into dst, creating
// the section before [HitObjects] when dst has none. dst is left alone when
// src has no [TimingPoints] section.
func ReplaceSection(dst, src *chart.Document, edit func([]string) []string) bool {
	body := src.Body(constants.SectionTimingPoints)
	if body == nil {
		return false
	}
	if edit != nil {
		body = edit(body)
	}
	if !dst.SetBody(constants.SectionTimingPoints, body) {
		dst.InsertSection(constants.SectionTimingPoints, constants.SectionHitObjects, body)
	}
	return true
}
