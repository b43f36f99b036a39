// Package sanitize repairs records that the chart decoder would reject or
// choke on. Each pass touches the smallest possible set of fields and
// reports how many records it changed; a pass that changes nothing returns
// its input untouched. The Doc variants edit a parsed chart in place.
package sanitize

import (
	"strings"

	"github.com/jsphweid/taikoshift/chart"
)

// recordFunc rewrites one record. keep=false drops the line.
type recordFunc func(line string, p []string) (out []string, keep, changed bool)

func rewrite(text, section string, minFields int, fn recordFunc) (string, int) {
	doc := chart.Parse(text)
	fixed := rewriteDoc(doc, section, minFields, fn)
	if fixed == 0 {
		return text, 0
	}
	return doc.String(), fixed
}

func rewriteDoc(doc *chart.Document, section string, minFields int, fn recordFunc) int {
	body := doc.Body(section)
	if body == nil {
		return 0
	}

	fixed := 0
	out := make([]string, 0, len(body))
	for _, line := range body {
		if chart.IsSkippable(line) {
			out = append(out, line)
			continue
		}
		p := chart.Fields(line)
		if len(p) < minFields {
			out = append(out, line)
			continue
		}
		np, keep, changed := fn(line, p)
		if !changed {
			out = append(out, line)
			continue
		}
		fixed++
		if keep {
			out = append(out, strings.Join(np, ","))
		}
	}
	if fixed > 0 {
		doc.SetBody(section, out)
	}
	return fixed
}
