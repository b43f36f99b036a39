package model

import (
	"strings"

	"github.com/jsphweid/taikoshift/util"
)

// Marker is one parsed [TimingPoints] record. Fields keeps the original
// comma separated columns so columns nobody touches round-trip verbatim.
type Marker struct {
	Time        float64
	BeatLength  float64
	Meter       int
	Uninherited int // 1 for tempo markers, 0 for scroll markers
	Fields      []string
}

func (m Marker) IsTempo() bool {
	return m.Uninherited == 1
}

func (m Marker) IsScroll() bool {
	return m.Uninherited == 0
}

// IsRed reports a usable tempo marker: flagged as tempo with a positive beat length.
func (m Marker) IsRed() bool {
	return m.Uninherited == 1 && m.BeatLength > 0
}

// IsGreen reports a usable scroll marker: flagged as scroll with a negative beat length.
func (m Marker) IsGreen() bool {
	return m.Uninherited == 0 && m.BeatLength < 0
}

func (m Marker) Bpm() float64 {
	return 60000.0 / m.BeatLength
}

func (m Marker) Line() string {
	return strings.Join(m.Fields, ",")
}

func (m Marker) clone() Marker {
	fields := make([]string, len(m.Fields))
	copy(fields, m.Fields)
	m.Fields = fields
	return m
}

// WithBeatLength returns a copy with column 2 rewritten.
func (m Marker) WithBeatLength(bl float64) Marker {
	c := m.clone()
	c.BeatLength = bl
	if len(c.Fields) > 1 {
		c.Fields[1] = util.FormatFloat(bl)
	}
	return c
}

// WithTime returns a copy whose column 1 is the integer millisecond t.
func (m Marker) WithTime(t int64) Marker {
	c := m.clone()
	c.Time = float64(t)
	if len(c.Fields) > 0 {
		c.Fields[0] = formatInt(t)
	}
	return c
}

// AsScroll returns a copy flagged as a scroll marker (column 7 = 0).
func (m Marker) AsScroll() Marker {
	c := m.clone()
	c.Uninherited = 0
	if len(c.Fields) > 6 {
		c.Fields[6] = "0"
	}
	return c
}

// ClampEvent records one scroll speed the normalizer had to clamp.
type ClampEvent struct {
	Pass      string  `json:"pass"`
	Time      float64 `json:"t"`
	Bpm       float64 `json:"bpm"`
	RawSv     float64 `json:"raw_sv"`
	ClampedSv float64 `json:"clamped_sv"`
}

const (
	PassExistingGreen = "existing-green"
	PassInsertGreen   = "insert-green"
	PassSliderScale   = "slider-scale"
)
