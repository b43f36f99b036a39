package model

import "github.com/jsphweid/taikoshift/util"

// SanitizeReport summarizes the slider repairs made before conversion.
type SanitizeReport struct {
	LinesTouched                int
	FixedMissingControlPoints   int
	FixedNonPositivePixelLength int

	// NoSplit holds the start times of sliders whose length was made up;
	// the decomposer keeps them whole.
	NoSplit util.Set[int]
	Samples []string
}

func (r SanitizeReport) HasAnyFix() bool {
	return r.LinesTouched > 0
}
