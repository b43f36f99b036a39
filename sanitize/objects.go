package sanitize

import (
	"fmt"
	"math"
	"strings"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/util"
)

func sliderFields(p []string) bool {
	typ, ok := chart.ObjectType(p)
	return ok && chart.IsSlider(typ)
}

// nudge returns a point one pixel beside (x, y), to the left at the right
// edge, clamped to the playfield.
func nudge(x, y int) (int, int) {
	x2 := x + 1
	if x >= constants.PlayfieldWidth {
		x2 = x - 1
	}
	return util.Clamp(x2, 0, constants.PlayfieldWidth), util.Clamp(y, 0, constants.PlayfieldHeight)
}

// Sliders repairs sliders the stable client accepts but decoders reject: a
// curve without control points gets one point next to the head, and a
// pixel length that is unreadable or not positive becomes 0.1. Sliders
// whose length was made up are listed in the report's NoSplit set.
func Sliders(text string, sampleLimit int) (string, model.SanitizeReport) {
	report := model.SanitizeReport{NoSplit: util.NewSet[int]()}
	out, touched := rewrite(text, constants.SectionHitObjects, 8, repairSlider(&report, sampleLimit))
	report.LinesTouched = touched
	return out, report
}

func SlidersDoc(doc *chart.Document, sampleLimit int) model.SanitizeReport {
	report := model.SanitizeReport{NoSplit: util.NewSet[int]()}
	report.LinesTouched = rewriteDoc(doc, constants.SectionHitObjects, 8, repairSlider(&report, sampleLimit))
	return report
}

func repairSlider(report *model.SanitizeReport, sampleLimit int) recordFunc {
	return func(line string, p []string) ([]string, bool, bool) {
		if !sliderFields(p) {
			return p, true, false
		}
		fixedCurve, fixedLength := false, false

		if curve := strings.TrimSpace(p[5]); !strings.Contains(curve, "|") {
			x, _ := util.ParseInt(p[0])
			y, _ := util.ParseInt(p[1])
			x2, y2 := nudge(x, y)
			p[5] = fmt.Sprintf("%s|%d:%d", curve, x2, y2)
			report.FixedMissingControlPoints++
			fixedCurve = true
		}
		if px, ok := util.ParseFloat(p[7]); !ok || px <= 0 {
			p[7] = constants.RescuedPixelLength
			report.FixedNonPositivePixelLength++
			fixedLength = true
		}
		if !fixedCurve && !fixedLength {
			return p, true, false
		}

		if start, ok := util.ParseInt(p[2]); ok && fixedLength {
			report.NoSplit.Add(start)
		}
		if len(report.Samples) < sampleLimit {
			report.Samples = append(report.Samples, fmt.Sprintf("t=%s: %s  ==>  %s", p[2], line, strings.Join(p, ",")))
		}
		return p, true, true
	}
}

// ClampControlPoints moves integer control points that lie outside the
// playfield onto its edge.
func ClampControlPoints(text string) (string, int) {
	return rewrite(text, constants.SectionHitObjects, 6, clampControlPoints)
}

func ClampControlPointsDoc(doc *chart.Document) int {
	return rewriteDoc(doc, constants.SectionHitObjects, 6, clampControlPoints)
}

func clampControlPoints(_ string, p []string) ([]string, bool, bool) {
	if !sliderFields(p) {
		return p, true, false
	}
	head, rest, found := strings.Cut(p[5], "|")
	if !found {
		return p, true, false
	}
	nodes := strings.Split(rest, "|")
	changed := false
	for i, node := range nodes {
		xs, ys, found := strings.Cut(node, ":")
		if !found || xs == "" {
			continue
		}
		x, okX := util.ParseInt(xs)
		y, okY := util.ParseInt(ys)
		if !okX || !okY {
			continue
		}
		cx := util.Clamp(x, 0, constants.PlayfieldWidth)
		cy := util.Clamp(y, 0, constants.PlayfieldHeight)
		if cx != x || cy != y {
			nodes[i] = fmt.Sprintf("%d:%d", cx, cy)
			changed = true
		}
	}
	if !changed {
		return p, true, false
	}
	p[5] = head + "|" + strings.Join(nodes, "|")
	return p, true, true
}

// SimplifyExtremeSliders collapses sliders that are absurdly long (or of
// unreadable length) or have too many control points into a one pixel
// straight slider with no repeats.
func SimplifyExtremeSliders(text string) (string, int) {
	return rewrite(text, constants.SectionHitObjects, 8, simplifyExtremeSlider)
}

func SimplifyExtremeSlidersDoc(doc *chart.Document) int {
	return rewriteDoc(doc, constants.SectionHitObjects, 8, simplifyExtremeSlider)
}

func simplifyExtremeSlider(_ string, p []string) ([]string, bool, bool) {
	if !sliderFields(p) {
		return p, true, false
	}
	px, ok := util.ParseFloat(p[7])
	tooLong := !ok || px > constants.ExtremeSliderLength
	tooMany := strings.Count(p[5], "|") > constants.ExtremeSliderControlPoints
	if !tooLong && !tooMany {
		return p, true, false
	}

	x, _ := util.ParseInt(p[0])
	y, _ := util.ParseInt(p[1])
	x2, y2 := nudge(x, y)
	p[5] = fmt.Sprintf("L|%d:%d", x2, y2)
	p[6] = "1"
	p[7] = "1"
	return p, true, true
}

// LazerSafeObjects drops sliders with a non-finite pixel length and caps
// the rest at the longest length lazer accepts.
func LazerSafeObjects(text string) (string, int) {
	return rewrite(text, constants.SectionHitObjects, 8, lazerSafeObject)
}

func LazerSafeObjectsDoc(doc *chart.Document) int {
	return rewriteDoc(doc, constants.SectionHitObjects, 8, lazerSafeObject)
}

func lazerSafeObject(_ string, p []string) ([]string, bool, bool) {
	if !sliderFields(p) {
		return p, true, false
	}
	px, ok := util.ParseFloat(p[7])
	switch {
	case !ok:
		return p, true, false
	case math.IsNaN(px) || math.IsInf(px, 0):
		return nil, false, true
	case px > constants.LazerMaxSliderLength:
		p[7] = util.FormatFloat(constants.LazerMaxSliderLength)
		return p, true, true
	}
	return p, true, false
}
