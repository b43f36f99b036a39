package chart

import (
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/util"
)

// ObjectType returns the type bits of a [HitObjects] record.
func ObjectType(fields []string) (int, bool) {
	if len(fields) < 4 {
		return 0, false
	}
	return util.ParseInt(fields[3])
}

func IsSlider(objectType int) bool {
	return objectType&constants.TypeSlider != 0
}

// IsLengthDependent reports sliders, spinners and holds.
func IsLengthDependent(objectType int) bool {
	return objectType&(constants.TypeSlider|constants.TypeSpinner|constants.TypeHold) != 0
}

func (d *Document) CountSliders() int {
	start, end, ok := d.Section(constants.SectionHitObjects)
	if !ok {
		return 0
	}
	count := 0
	for _, l := range d.lines[start:end] {
		if IsSkippable(l) {
			continue
		}
		if t, ok := ObjectType(Fields(l)); ok && IsSlider(t) {
			count++
		}
	}
	return count
}
