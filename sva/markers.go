package sva

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/timing"
	"github.com/jsphweid/taikoshift/util"
)

// EncodeMarker renders the comment line that records an applied segment:
//
//	// [SVA] applied t=S..E xM bpm=O->N beatLen=O->N mergedReds=K insertedGreens=J
//
// E is INF for an open-ended segment.
func EncodeMarker(s model.SvaSegment) string {
	end := "INF"
	if !s.OpenEnded() {
		end = strconv.FormatInt(util.RoundMs(s.EndTime), 10)
	}
	return fmt.Sprintf("%s t=%d..%s x%d bpm=%s->%s beatLen=%s->%s mergedReds=%d insertedGreens=%d",
		constants.SvaMarkerPrefix,
		util.RoundMs(s.StartTime), end,
		s.Multiplier,
		util.FormatTrimmed(s.OldBpm), util.FormatTrimmed(s.NewBpm),
		util.FormatFloat(s.OldBeatLength), util.FormatFloat(s.NewBeatLength),
		s.MergedCount, s.InsertedCount)
}

// DecodeMarker reads a line written by EncodeMarker. Lines without a start
// time or with a multiplier of 1 or less are rejected.
func DecodeMarker(line string) (model.SvaSegment, bool) {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, constants.SvaMarkerPrefix) {
		return model.SvaSegment{}, false
	}

	start, end := int64(math.MinInt64), int64(math.MaxInt64)
	seg := model.SvaSegment{Multiplier: 1}
	for _, tok := range strings.Fields(strings.TrimPrefix(t, constants.SvaMarkerPrefix)) {
		if len(tok) >= 2 && (tok[0] == 'x' || tok[0] == 'X') {
			seg.Multiplier = atoiOrZero(tok[1:])
			continue
		}
		key, val, found := strings.Cut(tok, "=")
		if !found {
			continue
		}
		switch strings.ToLower(key) {
		case "t":
			if a, b, ok := splitPair(val, ".."); ok {
				start, end = parseTimeToken(a), parseTimeToken(b)
			}
		case "bpm":
			if a, b, ok := splitPair(val, "->"); ok {
				seg.OldBpm, seg.NewBpm = floatOrZero(a), floatOrZero(b)
			}
		case "beatlen":
			if a, b, ok := splitPair(val, "->"); ok {
				seg.OldBeatLength, seg.NewBeatLength = floatOrZero(a), floatOrZero(b)
			}
		case "mergedreds":
			seg.MergedCount = atoiOrZero(val)
		case "insertedgreens":
			seg.InsertedCount = atoiOrZero(val)
		}
	}
	if start == math.MinInt64 || seg.Multiplier <= 1 {
		return model.SvaSegment{}, false
	}

	seg.StartTime = float64(start)
	seg.EndTime = math.Inf(1)
	if end != math.MaxInt64 {
		seg.EndTime = float64(end)
	}
	seg.IsHighSv = seg.NewBpm > seg.OldBpm
	return seg, true
}

func splitPair(s, sep string) (string, string, bool) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func parseTimeToken(s string) int64 {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "INF") {
		return math.MaxInt64
	}
	if v, ok := util.ParseFloat(s); ok {
		switch {
		case math.IsNaN(v):
			return math.MinInt64
		case math.IsInf(v, 1):
			return math.MaxInt64
		case math.IsInf(v, -1):
			return math.MinInt64
		}
		return util.RoundMs(v)
	}
	return math.MinInt64
}

func atoiOrZero(s string) int {
	v, _ := util.ParseInt(s)
	return v
}

func floatOrZero(s string) float64 {
	v, _ := util.ParseFloat(s)
	return v
}

// DetectApplied recovers the segments of an already corrected chart. The
// marker block is authoritative; charts without one fall back to pairs of
// tempo markers at the same millisecond whose beat lengths differ by a
// power of two.
func DetectApplied(text string) []model.SvaSegment {
	body := chart.Parse(text).Body(constants.SectionTimingPoints)
	if body == nil {
		return nil
	}

	var fromMarkers []model.SvaSegment
	seen := util.NewSet[int64]()
	for _, line := range body {
		seg, ok := DecodeMarker(line)
		if !ok {
			continue
		}
		if key := util.RoundMs(seg.StartTime); !seen.Has(key) {
			seen.Add(key)
			fromMarkers = append(fromMarkers, seg)
		}
	}
	if len(fromMarkers) > 0 {
		sort.SliceStable(fromMarkers, func(i, j int) bool { return fromMarkers[i].StartTime < fromMarkers[j].StartTime })
		return fromMarkers
	}
	return detectLegacyPairs(body)
}

func detectLegacyPairs(body []string) []model.SvaSegment {
	groups := make(map[int64][]float64)
	var keys []int64
	for _, line := range body {
		m, ok := timing.ParseMarker(line)
		if !ok || !m.IsRed() {
			continue
		}
		key := util.RoundMs(m.Time)
		if _, exists := groups[key]; !exists {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], m.BeatLength)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var segments []model.SvaSegment
	for i, key := range keys {
		beats := groups[key]
		if len(beats) < 2 {
			continue
		}
		lo, hi := beats[0], beats[0]
		for _, b := range beats[1:] {
			lo, hi = math.Min(lo, b), math.Max(hi, b)
		}
		if lo <= 0 {
			continue
		}
		mul := nearestPowerOfTwo(hi / lo)
		if mul <= 1 {
			continue
		}
		end := math.Inf(1)
		if i+1 < len(keys) {
			end = float64(keys[i+1])
		}
		segments = append(segments, model.SvaSegment{StartTime: float64(key), EndTime: end, Multiplier: mul})
	}
	return segments
}

// nearestPowerOfTwo maps a beat length ratio to 2^k (k in 1..30) when it is
// within 1e-6 relative error, otherwise 1.
func nearestPowerOfTwo(ratio float64) int {
	if ratio < 1.0000001 {
		return 1
	}
	best, bestErr := 1, math.MaxFloat64
	for k := 1; k <= 30; k++ {
		m := 1 << k
		if err := math.Abs(ratio-float64(m)) / float64(m); err < bestErr {
			best, bestErr = m, err
		}
	}
	if bestErr > 1e-6 {
		return 1
	}
	return best
}
