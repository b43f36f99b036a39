package split

import (
	"math"
	"strings"
	"testing"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/timing"
	"github.com/jsphweid/taikoshift/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChart(difficulty string, timingLines, objectLines []string) string {
	return "osu file format v14\n\n[Difficulty]\n" + difficulty +
		"\n\n[TimingPoints]\n" + strings.Join(timingLines, "\n") +
		"\n\n[HitObjects]\n" + strings.Join(objectLines, "\n") + "\n"
}

const defaultDifficulty = "SliderMultiplier:1.4\nSliderTickRate:1"

func objects(text string) []string {
	var out []string
	for _, l := range chart.Parse(text).Body(constants.SectionHitObjects) {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func TestParseSlider(t *testing.T) {
	assert := assert.New(t)

	s, ok := ParseSlider("100,120,1000,6,4,b|300:100,0,200,2|8,1:2,0:0:0:0:")
	require.True(t, ok)
	assert.Equal(100, s.X)
	assert.Equal(120, s.Y)
	assert.Equal(1000, s.StartTime)
	assert.Equal(byte('B'), s.CurveKind)
	assert.Equal(1, s.RepeatCount, "repeat count is at least one")
	assert.Equal(200.0, s.PixelLength)
	assert.Equal([]int{2, 8}, s.EdgeHitSounds)
	assert.Equal("0:0:0:0:", s.Extras())

	s, ok = ParseSlider("100,120,1000,2,4,L|300:100,1,200")
	require.True(t, ok)
	assert.Equal([]int{4}, s.EdgeHitSounds, "the object hit sound stands in for missing edge sounds")
	assert.Equal(constants.DefaultHitExtras, s.Extras())

	for _, line := range []string{
		"256,192,1000,1,0,0:0:0:0:",
		"100,120,1000,2,0,L|300:100,1",
		"100,120,10.5,2,0,L|300:100,1,200",
		"100,120,1000,2,0,L|300:100,1,long",
	} {
		_, ok := ParseSlider(line)
		assert.False(ok, line)
	}
}

func TestDecideStraightSlider(t *testing.T) {
	s, ok := ParseSlider("100,100,1000,2,0,L|300:100,1,200")
	require.True(t, ok)
	tm := timing.NewModel(timing.Parse(buildChart(defaultDifficulty, []string{"0,500,4,2,0,100,1,0"}, nil)))
	d := Decide(s, 200, tm, chart.Difficulty{SliderMultiplier: 1.4, SliderTickRate: 1}, 14)

	assert := assert.New(t)
	assert.Equal(500.0, d.TimingBeatLength)
	assert.Equal(1.0, d.BpmMultiplier)
	assert.Equal(714, d.Duration)
	assert.Equal(500.0, d.TickSpacing)
	assert.InDelta(714.2857142857, d.Lhs, 1e-6)
	assert.Equal(1000.0, d.Rhs)
	assert.True(d.Split)
}

func TestDecide(t *testing.T) {
	diff := chart.Difficulty{SliderMultiplier: 1.4, SliderTickRate: 1}
	tests := []struct {
		name     string
		timing   []string
		slider   string
		version  int
		duration int
		tick     float64
		split    bool
	}{
		{"long slider stays whole", []string{"0,500,4,2,0,100,1,0"}, "100,100,1000,2,0,L|300:100,1,1000", 14, 3571, 500, false},
		{"repeats double the length", []string{"0,500,4,2,0,100,1,0"}, "100,100,1000,2,0,L|300:100,2,200", 14, 1428, 500, false},
		{"scroll speed halves the adjusted beat", []string{"0,500,4,2,0,100,1,0", "0,-50,4,2,0,100,0,0"}, "100,100,1000,2,0,L|300:100,1,200", 14, 357, 357, true},
		{"old charts tick on the adjusted beat", []string{"0,500,4,2,0,100,1,0", "0,-50,4,2,0,100,0,0"}, "100,100,1000,2,0,L|300:100,1,200", 6, 357, 250, true},
		{"unknown version reads as current", []string{"0,500,4,2,0,100,1,0", "0,-50,4,2,0,100,0,0"}, "100,100,1000,2,0,L|300:100,1,200", 0, 357, 357, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := ParseSlider(tt.slider)
			require.True(t, ok)
			tm := timing.NewModel(timing.Parse(buildChart(defaultDifficulty, tt.timing, nil)))
			d := Decide(s, s.PixelLength, tm, diff, tt.version)

			assert.Equal(t, tt.duration, d.Duration)
			assert.Equal(t, tt.tick, d.TickSpacing)
			assert.Equal(t, tt.split, d.Split)
		})
	}
}

func TestDecideZeroBeatLength(t *testing.T) {
	s, _ := ParseSlider("100,100,1000,2,0,L|300:100,1,200")
	tm := timing.NewModel(timing.Parse(buildChart(defaultDifficulty, []string{"0,0,4,2,0,100,1,0"}, nil)))
	d := Decide(s, 200, tm, chart.Difficulty{SliderMultiplier: 1.4, SliderTickRate: 1}, 14)

	assert := assert.New(t)
	assert.Equal(1.0, d.TimingBeatLength)
	assert.False(math.IsInf(d.OsuVelocity, 0) || math.IsNaN(d.OsuVelocity))
	assert.Equal(1, d.Duration)
	assert.True(d.Split)

	hits, ok := Events(s, d)
	assert.True(ok)
	assert.Equal([]model.HitEvent{{Time: 1000}, {Time: 1001}}, hits)
}

func TestTruncInt32(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(714, truncInt32(714.99))
	assert.Equal(-3, truncInt32(-3.7))
	assert.Equal(math.MinInt32, truncInt32(math.NaN()))
	assert.Equal(math.MinInt32, truncInt32(1e10))
	assert.Equal(math.MinInt32, truncInt32(math.Inf(-1)))
}

func TestDecompose(t *testing.T) {
	text := buildChart(defaultDifficulty, []string{"0,500,4,2,0,100,1,0"}, []string{
		"256,192,500,1,0,0:0:0:0:",
		"100,100,1000,2,0,L|300:100,1,200",
		"100,100,2000,2,0,L|300:100,1,1000",
		"100,100,4000,2,4,L|200:100,2,100,0|2|8,0:0,1:2:0:0:",
	})
	res := Decompose(text, Options{})

	assert := assert.New(t)
	assert.Equal([]string{
		"256,192,500,1,0,0:0:0:0:",
		"256,192,1000,1,0,0:0:0:0:",
		"256,192,1500,1,0,0:0:0:0:",
		"100,100,2000,2,0,L|300:100,1,1000",
		"256,192,4000,1,0,1:2:0:0:",
		"256,192,4357,1,2,1:2:0:0:",
		"256,192,4714,1,8,1:2:0:0:",
	}, objects(res.Text))
	assert.Equal(2, res.Split)
	assert.Equal(1, res.Kept)
	assert.Zero(res.Fallbacks)
	assert.Len(res.Decisions, 3)
	assert.Contains(res.Text, "\r\n")
}

func TestDecomposeUsesGivenTiming(t *testing.T) {
	text := buildChart(defaultDifficulty, []string{"0,500,4,2,0,100,1,0"}, []string{
		"100,100,1000,2,0,L|300:100,1,200",
	})
	source := timing.NewModel(timing.ParseStrict(buildChart(defaultDifficulty, []string{
		"0,500,4,2,0,100,1,0",
		"0,-50,4,2,0,100,0,0",
	}, nil)))

	res := Decompose(text, Options{Timing: source})
	assert.Equal(t, []string{
		"256,192,1000,1,0,0:0:0:0:",
		"256,192,1357,1,0,0:0:0:0:",
	}, objects(res.Text))

	res = Decompose(text, Options{Timing: source, FormatVersion: 6})
	assert.Equal(t, []string{
		"256,192,1000,1,0,0:0:0:0:",
		"256,192,1250,1,0,0:0:0:0:",
	}, objects(res.Text))
}

func TestDecomposeKeepsNoSplitSliders(t *testing.T) {
	text := buildChart(defaultDifficulty, []string{"0,500,4,2,0,100,1,0"}, []string{
		"100,100,1000,2,0,L|300:100,1,200",
	})
	res := Decompose(text, Options{NoSplit: util.NewSet(1000)})

	assert.Equal(t, []string{"100,100,1000,2,0,L|300:100,1,200"}, objects(res.Text))
	assert.Equal(t, 1, res.Kept)
	assert.Empty(t, res.Decisions)

	t.Run("only sliders count as kept", func(t *testing.T) {
		text := buildChart(defaultDifficulty, []string{"0,500,4,2,0,100,1,0"}, []string{
			"100,100,1000,2,0,L|300:100,1,200",
			"256,192,1500,1,0,L|300:100,1,200",
		})
		res := Decompose(text, Options{NoSplit: util.NewSet(1000, 1500)})

		assert.Equal(t, 1, res.Kept)
		assert.Equal(t, []string{
			"100,100,1000,2,0,L|300:100,1,200",
			"256,192,1500,1,0,L|300:100,1,200",
		}, objects(res.Text))
	})
}

func TestDecomposePassesThroughUnreadableRecords(t *testing.T) {
	lines := []string{
		"// comment",
		"100,100,1000,2,0,L|300:100,1",
		"100,100,x,2,0,L|300:100,1,200",
		"100,100,1000,2,0,L|300:100,1,nan?",
		"256,192,3000,12,0,4000,0:0:0:0:",
	}
	res := Decompose(buildChart(defaultDifficulty, []string{"0,500,4,2,0,100,1,0"}, lines), Options{})
	assert.Equal(t, lines, objects(res.Text))
	assert.Zero(t, res.Split)
}

func TestDecomposeWithoutObjects(t *testing.T) {
	text := "osu file format v14\n\n[TimingPoints]\n0,500,4,2,0,100,1,0\n"
	assert.Equal(t, text, Decompose(text, Options{}).Text)
}

func TestDecomposeKeepsSliderWhenNoHitsCanBePlaced(t *testing.T) {
	// a huge tick rate makes the tick spacing too small to enumerate
	text := buildChart("SliderMultiplier:1.4\nSliderTickRate:1000000000", []string{"0,500,4,2,0,100,1,0"}, []string{
		"100,100,1000,2,0,L|300:100,1,200",
	})
	res := Decompose(text, Options{})

	assert := assert.New(t)
	assert.Equal([]string{"100,100,1000,2,0,L|300:100,1,200"}, objects(res.Text))
	assert.Equal(1, res.Fallbacks)
	require.Len(t, res.Diagnostics, 1)
	assert.True(strings.HasPrefix(res.Diagnostics[0], "[SplitEmpty->KeepSlider] t=1000"))
}

func TestEvents(t *testing.T) {
	s := model.Slider{StartTime: 1000, EdgeHitSounds: []int{2, 8}}

	t.Run("empty range", func(t *testing.T) {
		hits, ok := Events(s, model.SplitDecision{Duration: -100, TickSpacing: 10})
		assert.False(t, ok)
		assert.Empty(t, hits)
	})

	t.Run("zero spacing places one hit", func(t *testing.T) {
		hits, ok := Events(s, model.SplitDecision{Duration: 100, TickSpacing: 0})
		assert.True(t, ok)
		assert.Equal(t, []model.HitEvent{{Time: 1000, HitSound: 2}}, hits)
	})

	t.Run("rounds half away from zero", func(t *testing.T) {
		hits, ok := Events(s, model.SplitDecision{Duration: 300, TickSpacing: 100.5})
		assert.True(t, ok)
		assert.Equal(t, []model.HitEvent{
			{Time: 1000, HitSound: 2},
			{Time: 1101, HitSound: 8},
			{Time: 1201, HitSound: 2},
			{Time: 1302, HitSound: 8},
		}, hits)
	})
}

func TestFormatDecision(t *testing.T) {
	s, _ := ParseSlider("100,100,1000,2,0,L|300:100,1,200")
	d := model.SplitDecision{StartTime: 1000, Spans: 1, Duration: 714, Split: true}
	line := FormatDecision(s, d, chart.Difficulty{SliderMultiplier: 1.4, SliderTickRate: 1})

	assert.True(t, strings.HasPrefix(line, "t=1000 type=L spans=1 px=200.000000"))
	assert.True(t, strings.HasSuffix(line, "-> split=1"))
	assert.Contains(t, line, "dur=714")
}

func TestDecomposeDocEditsInPlace(t *testing.T) {
	text := buildChart(defaultDifficulty, []string{"0,500,4,2,0,100,1,0"}, []string{
		"100,100,1000,2,0,L|300:100,1,200",
	})
	doc := chart.Parse(text)
	res := DecomposeDoc(doc, Options{})

	assert.Equal(t, 1, res.Split)
	assert.Empty(t, res.Text)
	assert.Equal(t, Decompose(text, Options{}).Text, doc.String())
	assert.Equal(t, []string{"256,192,1000,1,0,0:0:0:0:", "256,192,1500,1,0,0:0:0:0:"}, objects(doc.String()))
}
