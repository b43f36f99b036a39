package preview

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Hit is a note start read back from a preview file.
type Hit struct {
	TimeMs int64
	Key    uint8
	Finish bool
}

// ReadFile parses a MIDI file. The parser panics on some malformed input;
// that is reported as an error.
func ReadFile(path string) (*smf.SMF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading midi file: %w", err)
	}
	return Read(bytes.NewReader(data))
}

func Read(r io.Reader) (s *smf.SMF, e error) {
	defer func() {
		if rec := recover(); rec != nil {
			s, e = nil, errors.New(fmt.Sprint("parsing midi file: ", rec))
		}
	}()
	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("parsing midi file: %w", err)
	}
	return res, nil
}

// Hits lists the note starts of every track in time order.
func Hits(s *smf.SMF) []Hit {
	var hits []Hit
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			if event.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0 {
				hits = append(hits, Hit{
					TimeMs: (s.TimeAt(absTicks) + 500) / 1000,
					Key:    key,
					Finish: velocity >= FinishVelocity,
				})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].TimeMs < hits[j].TimeMs })
	return hits
}
