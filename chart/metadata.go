package chart

import (
	"strconv"
	"strings"

	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/util"
)

const formatHeader = "osu file format v"

// FormatVersion reads the digits of the first line, defaulting to 14.
func (d *Document) FormatVersion() int {
	if len(d.lines) == 0 {
		return constants.DefaultFormatVersion
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, d.lines[0])
	v, err := strconv.Atoi(digits)
	if err != nil {
		return constants.DefaultFormatVersion
	}
	return v
}

// SetFormatVersion rewrites the format header, inserting one if missing.
func (d *Document) SetFormatVersion(version int) {
	header := formatHeader + strconv.Itoa(version)
	if len(d.lines) > 0 && hasPrefixFold(d.lines[0], formatHeader) {
		d.lines[0] = header
		return
	}
	d.lines = append([]string{header}, d.lines...)
}

// sectionValue finds "Key:" inside a section and returns its line index
// and trimmed value.
func (d *Document) sectionValue(section, key string) (int, string, bool) {
	start, end, ok := d.Section(section)
	if !ok {
		return -1, "", false
	}
	for i := start; i < end; i++ {
		t := strings.TrimSpace(d.lines[i])
		if hasPrefixFold(t, key+":") {
			return i, strings.TrimSpace(t[len(key)+1:]), true
		}
	}
	return -1, "", false
}

// AppendVersionSuffix appends suffix to [Metadata] Version: unless the
// value already ends with it.
func (d *Document) AppendVersionSuffix(suffix string) {
	i, value, ok := d.sectionValue(constants.SectionMetadata, "Version")
	if !ok || suffix == "" {
		return
	}
	if strings.HasSuffix(strings.ToLower(value), strings.ToLower(suffix)) {
		return
	}
	d.lines[i] = "Version:" + value + suffix
}

// ForceBeatmapIDZero detaches the output from the source's online id.
func (d *Document) ForceBeatmapIDZero() {
	i, _, ok := d.sectionValue(constants.SectionMetadata, "BeatmapID")
	if ok {
		d.lines[i] = "BeatmapID:0"
	}
}

// Mode returns the [General] Mode: value.
func (d *Document) Mode() (int, bool) {
	_, value, ok := d.sectionValue(constants.SectionGeneral, "Mode")
	if !ok {
		return 0, false
	}
	return util.ParseInt(value)
}

// SetMode rewrites [General] Mode:, adding it when absent.
func (d *Document) SetMode(mode int) {
	line := "Mode: " + strconv.Itoa(mode)
	if i, _, ok := d.sectionValue(constants.SectionGeneral, "Mode"); ok {
		d.lines[i] = line
		return
	}
	start, end, ok := d.Section(constants.SectionGeneral)
	if !ok {
		return
	}
	// keep the blank separator before the next header
	at := end
	for at > start && strings.TrimSpace(d.lines[at-1]) == "" {
		at--
	}
	d.lines = append(d.lines[:at], append([]string{line}, d.lines[at:]...)...)
}

type Difficulty struct {
	SliderMultiplier float64
	SliderTickRate   float64
}

// Difficulty reads the slider settings from [Difficulty]. Without that
// section every line of the chart is scanned.
func (d *Document) Difficulty() Difficulty {
	diff := Difficulty{
		SliderMultiplier: constants.DefaultSliderMultiplier,
		SliderTickRate:   constants.DefaultSliderTickRate,
	}

	read := func(line string) {
		t := strings.TrimSpace(line)
		parts := strings.SplitN(t, ":", 2)
		if len(parts) != 2 {
			return
		}
		switch {
		case hasPrefixFold(t, "SliderMultiplier:"):
			if v, ok := util.ParseFloat(parts[1]); ok {
				diff.SliderMultiplier = v
			}
		case hasPrefixFold(t, "SliderTickRate:"):
			if v, ok := util.ParseFloat(parts[1]); ok {
				diff.SliderTickRate = v
			}
		}
	}

	if start, end, ok := d.Section(constants.SectionDifficulty); ok {
		for _, l := range d.lines[start:end] {
			if !IsSkippable(l) {
				read(l)
			}
		}
		return diff
	}
	for _, l := range d.lines {
		read(l)
	}
	return diff
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
