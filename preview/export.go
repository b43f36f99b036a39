// Package preview renders a taiko chart as a single drum track MIDI file so
// a conversion can be auditioned in any MIDI player.
package preview

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/timing"
	"github.com/jsphweid/taikoshift/util"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// General MIDI percussion, channel 10.
const (
	DrumChannel uint8 = 9

	DonKey   uint8 = 38
	KatKey   uint8 = 42
	RollKey  uint8 = 46
	SwellKey uint8 = 49

	NormalVelocity uint8 = 90
	FinishVelocity uint8 = 127

	Resolution = 960
)

// osu! hit sound bits
const (
	soundWhistle = 2
	soundFinish  = 4
	soundClap    = 8
)

type Summary struct {
	Bpm    float64
	Dons   int
	Kats   int
	Rolls  int
	Swells int
}

func (s Summary) Notes() int {
	return int(util.Sum([]int{s.Dons, s.Kats, s.Rolls, s.Swells}))
}

type noteEvent struct {
	tick uint32
	on   bool
	key  uint8
	vel  uint8
}

// Build lays every hit object out on the tempo of the first tempo marker.
// Unreadable object lines are skipped.
func Build(text string) (*smf.SMF, Summary, error) {
	sum := Summary{Bpm: 60000.0 / constants.DefaultTempoBeatLength}
	if first, ok := timing.NewModel(timing.ParseStrict(text)).FirstTempo(); ok {
		sum.Bpm = first.Bpm()
	}
	if !(sum.Bpm > 0) || math.IsInf(sum.Bpm, 0) {
		return nil, sum, fmt.Errorf("unusable tempo %v", sum.Bpm)
	}

	ticks := smf.MetricTicks(Resolution)
	length := ticks.Ticks16th()
	toTicks := func(ms float64) uint32 {
		if ms <= 0 {
			return 0
		}
		return uint32(math.Round(ms * sum.Bpm / 60000 * float64(ticks.Ticks4th())))
	}

	var events []noteEvent
	for _, line := range chart.Parse(text).Body(constants.SectionHitObjects) {
		if chart.IsSkippable(line) {
			continue
		}
		p := chart.Fields(line)
		if len(p) < 5 {
			continue
		}
		t, ok := util.ParseFloat(p[2])
		if !ok {
			continue
		}
		typ, ok := util.ParseInt(p[3])
		if !ok {
			continue
		}
		sound, _ := util.ParseInt(p[4])

		key := DonKey
		switch {
		case typ&constants.TypeSpinner != 0:
			key = SwellKey
			sum.Swells++
		case chart.IsSlider(typ):
			key = RollKey
			sum.Rolls++
		case sound&(soundWhistle|soundClap) != 0:
			key = KatKey
			sum.Kats++
		default:
			sum.Dons++
		}
		vel := NormalVelocity
		if sound&soundFinish != 0 {
			vel = FinishVelocity
		}
		at := toTicks(t)
		events = append(events,
			noteEvent{tick: at, on: true, key: key, vel: vel},
			noteEvent{tick: at + length, key: key})
	}

	// note offs first so back to back hits on one key retrigger
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName("taiko preview"))
	track.Add(0, smf.MetaTempo(sum.Bpm))
	track.Add(0, smf.MetaMeter(4, 4))
	var last uint32
	for _, e := range events {
		delta := e.tick - last
		last = e.tick
		if e.on {
			track.Add(delta, midi.NoteOn(DrumChannel, e.key, e.vel))
		} else {
			track.Add(delta, midi.NoteOff(DrumChannel, e.key))
		}
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = ticks
	if err := s.Add(track); err != nil {
		return nil, sum, fmt.Errorf("adding track: %w", err)
	}
	return s, sum, nil
}

// Encode renders text as standard MIDI file bytes.
func Encode(text string) ([]byte, Summary, error) {
	s, sum, err := Build(text)
	if err != nil {
		return nil, sum, err
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, sum, fmt.Errorf("encoding midi: %w", err)
	}
	return buf.Bytes(), sum, nil
}

// WriteFile encodes text and writes it atomically to path.
func WriteFile(path, text string) (Summary, error) {
	data, sum, err := Encode(text)
	if err != nil {
		return sum, err
	}
	return sum, util.WriteFileAtomic(path, data)
}
