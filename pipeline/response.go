package pipeline

import (
	"time"

	"github.com/hako/durafmt"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/sva"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// FormatElapsed renders a run time for reports, two units at most.
func FormatElapsed(d time.Duration) string {
	if d < time.Microsecond {
		return "0us"
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

// WarningLines renders every visual assist warning of the run.
func (r *Result) WarningLines() []string {
	lines := []string{}
	for _, w := range r.Warnings {
		lines = append(lines, sva.FormatWarning(w)...)
	}
	for _, w := range r.EffectWarnings {
		lines = append(lines, sva.FormatEffectWarning(w)...)
	}
	return lines
}

func (r *Result) Response(fileName string) model.ConvertResponse {
	return model.ConvertResponse{
		Chart:          r.Text,
		FileName:       fileName,
		OutputVersion:  r.OutputVersion,
		SlidersBefore:  r.SlidersBefore,
		SlidersAfter:   r.SlidersAfter,
		ClampEvents:    len(r.ClampEvents),
		SvaApplied:     r.SvaApplied,
		Warnings:       r.WarningLines(),
		ElapsedDisplay: FormatElapsed(r.Elapsed),
	}
}
