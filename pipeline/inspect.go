package pipeline

import (
	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/speed"
	"github.com/jsphweid/taikoshift/split"
	"github.com/jsphweid/taikoshift/sva"
	"github.com/jsphweid/taikoshift/timing"
)

type Inspection struct {
	FormatVersion int
	Sliders       int
	BaseBpm       float64

	ClampEvents []model.ClampEvent
	// Applied are corrections already recorded in the chart; Candidates
	// are the segments a visual assist run would correct now.
	Applied    []model.SvaSegment
	Candidates []model.SvaSegment

	Warnings       []model.SvaWarning
	EffectWarnings []model.SvaEffectWarning

	Split         int
	Decisions     []model.SplitDecision
	DecisionLines []string
}

// Inspect reports what the pipeline sees in a chart without changing it.
func Inspect(text string, opts Options) Inspection {
	doc := chart.Parse(text)
	in := Inspection{
		FormatVersion: doc.FormatVersion(),
		Sliders:       doc.CountSliders(),
		BaseBpm:       speed.MostCommonBpm(text),
		ClampEvents:   speed.ParseClampEvents(text),
		Applied:       sva.DetectApplied(text),
	}

	svMin, svMax := opts.SvMin, opts.SvMax
	if svMax <= svMin {
		svMin, svMax = constants.DefaultSvMin, constants.DefaultSvMax
	}
	baseline := doc.Clone()
	speed.NormalizeDoc(baseline, speed.Unclamped())
	in.Candidates = sva.DetectDoc(baseline, svMin, svMax)

	if len(in.Applied) > 0 {
		in.Warnings = sva.LongObjectWarningsDoc(doc, in.Applied, constants.SampleLimitLongObjects)
		in.EffectWarnings = sva.EffectWarningsDoc(doc, in.Applied, constants.SampleLimitEffects)
	}

	dry := split.DecomposeDoc(doc.Clone(), split.Options{
		Timing:        timing.NewModel(timing.ParseLines(doc.Body(constants.SectionTimingPoints), true)),
		FormatVersion: in.FormatVersion,
		Evaluator:     opts.Evaluator,
	})
	in.Split = dry.Split
	in.Decisions = dry.Decisions
	in.DecisionLines = dry.DecisionLines
	return in
}

// Response is the JSON form served over HTTP.
func (in Inspection) Response() model.InspectResponse {
	res := model.InspectResponse{
		FormatVersion: in.FormatVersion,
		Sliders:       in.Sliders,
		ClampEvents:   in.ClampEvents,
		SplitCount:    in.Split,
	}
	if res.ClampEvents == nil {
		res.ClampEvents = []model.ClampEvent{}
	}
	res.Segments = make([]model.SegmentResponse, 0, len(in.Applied))
	for _, s := range in.Applied {
		res.Segments = append(res.Segments, model.NewSegmentResponse(s))
	}
	return res
}
