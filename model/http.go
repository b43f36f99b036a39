package model

type ConvertRequest struct {
	Chart         string `json:"chart"`
	Mode          string `json:"mode,omitempty"`
	LazerSafe     bool   `json:"lazer_safe,omitempty"`
	ConstantSpeed bool   `json:"constant_speed,omitempty"`
	Sva           bool   `json:"sva,omitempty"`
}

type ConvertResponse struct {
	Chart          string   `json:"chart"`
	FileName       string   `json:"file_name,omitempty"`
	OutputVersion  int      `json:"output_version"`
	SlidersBefore  int      `json:"sliders_before"`
	SlidersAfter   int      `json:"sliders_after"`
	ClampEvents    int      `json:"clamp_events"`
	SvaApplied     bool     `json:"sva_applied"`
	Warnings       []string `json:"warnings"`
	ElapsedDisplay string   `json:"elapsed"`
}

type SegmentResponse struct {
	Start         float64 `json:"start"`
	End           *int64  `json:"end"`
	Multiplier    int     `json:"multiplier"`
	OldBpm        float64 `json:"old_bpm"`
	NewBpm        float64 `json:"new_bpm"`
	MergedReds    int     `json:"merged_reds"`
	InsertedGreen int     `json:"inserted_greens"`
}

// NewSegmentResponse leaves End nil for an open-ended segment.
func NewSegmentResponse(s SvaSegment) SegmentResponse {
	res := SegmentResponse{
		Start:         s.StartTime,
		Multiplier:    s.Multiplier,
		OldBpm:        s.OldBpm,
		NewBpm:        s.NewBpm,
		MergedReds:    s.MergedCount,
		InsertedGreen: s.InsertedCount,
	}
	if !s.OpenEnded() {
		end := int64(s.EndTime)
		res.End = &end
	}
	return res
}

type InspectResponse struct {
	FormatVersion int               `json:"format_version"`
	Sliders       int               `json:"sliders"`
	ClampEvents   []ClampEvent      `json:"clamp_events"`
	Segments      []SegmentResponse `json:"segments"`
	SplitCount    int               `json:"split_count"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
