package sanitize

import (
	"math"
	"strings"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/util"
)

// FixMeter sets a meter of zero or less to 4.
func FixMeter(text string) (string, int) {
	return rewrite(text, constants.SectionTimingPoints, 8, fixMeter)
}

func FixMeterDoc(doc *chart.Document) int {
	return rewriteDoc(doc, constants.SectionTimingPoints, 8, fixMeter)
}

func fixMeter(_ string, p []string) ([]string, bool, bool) {
	meter, ok := util.ParseInt(p[2])
	if !ok || meter > 0 {
		return p, true, false
	}
	p[2] = "4"
	return p, true, true
}

// ClampBeatLengthRange keeps beat lengths inside [floatMin, floatMax] in
// magnitude, sign preserved. Zero and NaN are left alone.
func ClampBeatLengthRange(text string, floatMax, floatMin float64) (string, int) {
	return rewrite(text, constants.SectionTimingPoints, 8, clampBeatLength(floatMax, floatMin))
}

func ClampBeatLengthRangeDoc(doc *chart.Document, floatMax, floatMin float64) int {
	return rewriteDoc(doc, constants.SectionTimingPoints, 8, clampBeatLength(floatMax, floatMin))
}

func clampBeatLength(floatMax, floatMin float64) recordFunc {
	return func(_ string, p []string) ([]string, bool, bool) {
		bl, ok := util.ParseFloat(p[1])
		if !ok {
			return p, true, false
		}
		abs := math.Abs(bl)
		switch {
		case abs > floatMax:
			p[1] = util.FormatFloat(sign(bl) * floatMax)
		case abs > 0 && abs < floatMin:
			p[1] = util.FormatFloat(sign(bl) * floatMin)
		default:
			return p, true, false
		}
		return p, true, true
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// LazerSafeTiming rewrites a [TimingPoints] body so lazer can load it:
// meters are at least 1, non-finite beat lengths are dropped and tempo
// beat lengths are positive within [6, 60000]. Scroll markers are expected
// to have been clamped already and are left alone.
func LazerSafeTiming(body []string) []string {
	out := make([]string, 0, len(body))
	for _, line := range body {
		if chart.IsSkippable(line) {
			out = append(out, line)
			continue
		}
		p := chart.Fields(line)
		if len(p) < 8 {
			out = append(out, line)
			continue
		}
		if meter, ok := util.ParseInt(p[2]); ok && meter <= 0 {
			p[2] = "4"
		}
		uninherited, ok := util.ParseInt(p[6])
		if !ok {
			out = append(out, line)
			continue
		}
		bl, ok := util.ParseFloat(p[1])
		if !ok {
			out = append(out, line)
			continue
		}
		if math.IsNaN(bl) || math.IsInf(bl, 0) {
			continue
		}
		if uninherited == 1 {
			bl = util.Clamp(math.Abs(bl), constants.LazerMinBeatLength, constants.LazerMaxBeatLength)
			p[1] = util.FormatFloat(bl)
		}
		out = append(out, strings.Join(p, ","))
	}
	return out
}
