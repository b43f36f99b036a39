package pipeline

import (
	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
)

// Converter performs the mode conversion of a standard chart. The rest of
// the pipeline only post-processes its text, re-supplying the source
// timing wherever the converter may have lost it.
type Converter interface {
	Convert(src *chart.Document) (*chart.Document, error)
}

// ModeConverter relabels the chart as taiko and keeps every object as it
// is; the decomposer and the timing passes do the rest.
type ModeConverter struct{}

func (ModeConverter) Convert(src *chart.Document) (*chart.Document, error) {
	out := src.Clone()
	out.SetMode(constants.ModeTaiko)
	return out, nil
}
