package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/config"
	"github.com/jsphweid/taikoshift/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSource(mode string, timingLines, objectLines []string) string {
	return "osu file format v12\n\n[General]\nMode: " + mode +
		"\n\n[Metadata]\nTitle:Song\nVersion:Hard\nBeatmapID:12345\n\n[Difficulty]\nSliderMultiplier:1.4\nSliderTickRate:1\n\n[TimingPoints]\n" +
		strings.Join(timingLines, "\n") + "\n\n[HitObjects]\n" + strings.Join(objectLines, "\n") + "\n"
}

var (
	plainTiming  = []string{"0,500,4,2,0,100,1,0"}
	slowTiming   = []string{"0,500,4,2,0,100,1,0", "1000,1,4,2,0,100,1,0", "1500,500,4,2,0,100,1,0"}
	sliderObject = []string{"256,192,500,1,0,0:0:0:0:", "100,100,1000,2,0,L|300:100,1,200"}
	circles      = []string{"256,192,500,1,0,0:0:0:0:", "256,192,1200,1,0,0:0:0:0:"}
)

func hitObjects(text string) []string {
	var out []string
	for _, l := range chart.Parse(text).Body(constants.SectionHitObjects) {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func TestRun(t *testing.T) {
	res, err := Run(buildSource("0", plainTiming, sliderObject), DefaultOptions())
	require.NoError(t, err)

	assert := assert.New(t)
	doc := chart.Parse(res.Text)
	mode, ok := doc.Mode()
	assert.True(ok)
	assert.Equal(constants.ModeTaiko, mode)
	assert.Equal(constants.LazerFormatVersion, doc.FormatVersion())
	assert.Equal(constants.LazerFormatVersion, res.OutputVersion)
	assert.Contains(res.Text, "Version:Hard (taiko convert)")
	assert.Contains(res.Text, "BeatmapID:0")
	assert.Contains(doc.Body(constants.SectionTimingPoints), "0,500,4,2,0,100,1,0")

	assert.Equal([]string{
		"256,192,500,1,0,0:0:0:0:",
		"256,192,1000,1,0,0:0:0:0:",
		"256,192,1500,1,0,0:0:0:0:",
	}, hitObjects(res.Text))
	assert.Equal(1, res.SlidersBefore)
	assert.Zero(res.SlidersAfter)
	assert.Equal(1, res.Split)
	assert.False(res.SvaApplied)

	lines := res.Lines()
	assert.Equal("OutputVersion=128", lines[0])
	assert.Equal("PostProcess: sliders 1 -> 0 (split=1 kept=0 fallbacks=0)", lines[1])
}

func TestRunOutputModes(t *testing.T) {
	tests := []struct {
		name string
		mode OutputMode
		want int
	}{
		{"lazer", Lazer, 128},
		{"stable", Stable, 14},
		{"original keeps the source version", Original, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.OutputMode = tt.mode
			res, err := Run(buildSource("0", plainTiming, circles), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, chart.Parse(res.Text).FormatVersion())
		})
	}
}

func TestRunConstantSpeed(t *testing.T) {
	opts := DefaultOptions()
	opts.ConstantSpeed = true
	res, err := Run(buildSource("0", slowTiming, circles), opts)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Contains(res.Text, "Version:Hard (taiko convert) (constant speed)\r\n")
	assert.Equal(120.0, res.BaseBpm)
	require.Len(t, res.ClampEvents, 1)
	assert.Equal(1000.0, res.ClampEvents[0].Time)
	assert.False(res.SvaApplied)
	assert.Contains(chart.Parse(res.Text).Body(constants.SectionTimingPoints), "1000,-10000,4,2,0,100,0,0")
}

func TestRunVisualAssist(t *testing.T) {
	opts := DefaultOptions()
	opts.ConstantSpeed = true
	opts.Sva = true
	res, err := Run(buildSource("0", slowTiming, circles), opts)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.True(res.SvaApplied)
	require.Len(t, res.Segments, 1)
	assert.Equal(8, res.Segments[0].Multiplier)
	assert.False(res.Segments[0].IsHighSv)
	assert.Contains(res.Text, "Version:Hard (taiko convert) (constant speed adjusted)")

	body := chart.Parse(res.Text).Body(constants.SectionTimingPoints)
	assert.Contains(body, "1000,8,4,2,0,100,1,0")
	assert.Contains(res.Text, "// [SVA] applied t=1000..1500 x8")

	in := Inspect(res.Text, opts)
	require.Len(t, in.Applied, 1)
	assert.Equal(8, in.Applied[0].Multiplier)
}

func TestRunVisualAssistOnFirstSection(t *testing.T) {
	opts := DefaultOptions()
	opts.ConstantSpeed = true
	opts.Sva = true
	// 6 BPM opening against a 120 BPM base reads as scroll 20
	timingLines := []string{"0,10000,4,2,0,100,1,0", "1000,500,4,2,0,100,1,0", "4000,500,4,2,0,100,1,0"}
	objects := append(append([]string{}, circles...), "256,192,3000,1,0,0:0:0:0:")
	res, err := Run(buildSource("0", timingLines, objects), opts)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(120.0, res.BaseBpm)
	assert.True(res.SvaApplied)
	require.Len(t, res.Segments, 1)
	assert.Equal(0.0, res.Segments[0].StartTime)
	assert.Equal(1000.0, res.Segments[0].EndTime)
	assert.Equal(2, res.Segments[0].Multiplier)
	assert.True(res.Segments[0].IsHighSv)

	body := chart.Parse(res.Text).Body(constants.SectionTimingPoints)
	assert.Contains(body, "0,5000,4,2,0,100,1,0")
	assert.NotContains(body, "0,10000,4,2,0,100,1,0")
	assert.Contains(res.Text, "// [SVA] applied t=0..1000 x2 bpm=6->12")
}

func TestRunStrict(t *testing.T) {
	opts := DefaultOptions()
	opts.Strict = true

	_, err := Run(buildSource("3", plainTiming, circles), opts)
	assert.ErrorIs(t, err, ErrNotStandard)

	_, err = Run("osu file format v14\n\n[General]\nMode: 0\n", opts)
	assert.ErrorIs(t, err, ErrNoHitObjects)

	opts.Strict = false
	_, err = Run(buildSource("3", plainTiming, circles), opts)
	assert.NoError(t, err)
}

type failingConverter struct{}

func (failingConverter) Convert(*chart.Document) (*chart.Document, error) {
	return nil, errors.New("unsupported object")
}

func TestRunConverterError(t *testing.T) {
	opts := DefaultOptions()
	opts.Converter = failingConverter{}
	_, err := Run(buildSource("0", plainTiming, circles), opts)
	assert.ErrorContains(t, err, "converting chart: unsupported object")
}

func TestParseOutputMode(t *testing.T) {
	assert := assert.New(t)
	for in, want := range map[string]OutputMode{"": Lazer, "Lazer": Lazer, " stable ": Stable, "ORIGINAL": Original} {
		got, err := ParseOutputMode(in)
		assert.NoError(err)
		assert.Equal(want, got, in)
	}
	_, err := ParseOutputMode("mania")
	assert.Error(err)
	assert.Equal("original", Original.String())
}

func TestFromConfig(t *testing.T) {
	t.Setenv("TAIKOSHIFT_OUTPUT_MODE", "stable")
	t.Setenv("TAIKOSHIFT_LAZER_SAFE", "true")
	opts, err := FromConfig(config.FromEnv())
	require.NoError(t, err)
	assert.Equal(t, Stable, opts.OutputMode)
	assert.True(t, opts.LazerSafe)

	t.Setenv("TAIKOSHIFT_SV_MIN", "5")
	t.Setenv("TAIKOSHIFT_SV_MAX", "1")
	_, err = FromConfig(config.FromEnv())
	assert.Error(t, err)

	opts, err = FromConfig(nil)
	assert.NoError(t, err)
	assert.Equal(t, DefaultOptions().SvMax, opts.SvMax)
}

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		constantSpeed bool
		adjusted      bool
		want          string
	}{
		{"inside difficulty", "Artist - Title (mapper) [Hard].osu", false, false, "Artist - Title (mapper) [Hard (taiko convert)].osu"},
		{"constant speed", "Artist - Title (mapper) [Hard].osu", true, false, "Artist - Title (mapper) [Hard (taiko convert) (constant speed)].osu"},
		{"adjusted", "songs/a [x].osu", true, true, "a [x (taiko convert) (constant speed adjusted)].osu"},
		{"no brackets", "plain.osu", false, false, "plain (taiko convert).osu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputFileName(tt.input, tt.constantSpeed, tt.adjusted))
		})
	}
	assert.True(t, IsConvertedName("/x/a [Hard (taiko convert)].osu"))
	assert.False(t, IsConvertedName("/x/a [Hard].osu"))
}

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(buildSource("0", plainTiming, sliderObject)), 0644))
	return path
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := writeSource(t, dir, "a [Hard].osu")

	res, out, err := ConvertFile(in, "", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a [Hard (taiko convert)].osu"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Text, string(data))

	explicit := filepath.Join(dir, "out.osu")
	_, out, err = ConvertFile(in, explicit, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, explicit, out)

	_, _, err = ConvertFile(filepath.Join(dir, "missing.osu"), "", DefaultOptions())
	assert.Error(t, err)
}

func TestRunBatch(t *testing.T) {
	src := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "converted")
	paths := []string{
		writeSource(t, src, "a [Easy].osu"),
		writeSource(t, src, "b [Hard].osu"),
		writeSource(t, src, "b [Hard (taiko convert)].osu"),
		filepath.Join(src, "gone.osu"),
	}

	report, err := RunBatch(context.Background(), CreateJobs(paths), outDir, 2, DefaultOptions())
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(2, report.Converted)
	assert.Equal(1, report.Failed)
	assert.Contains(report.Errors, paths[3])
	assert.Equal(filepath.Join(outDir, "a [Easy (taiko convert)].osu"), report.Outputs[paths[0]])
	assert.Positive(report.BytesWritten)
	assert.FileExists(report.Outputs[paths[1]])
}

func TestRunBatchStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	paths := []string{writeSource(t, t.TempDir(), "a [Easy].osu")}

	report, err := RunBatch(ctx, CreateJobs(paths), "", 1, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Converted)
}

func TestInspect(t *testing.T) {
	in := Inspect(buildSource("0", plainTiming, sliderObject), DefaultOptions())

	assert := assert.New(t)
	assert.Equal(12, in.FormatVersion)
	assert.Equal(1, in.Sliders)
	assert.Equal(1, in.Split)
	require.Len(t, in.DecisionLines, 1)
	assert.True(strings.HasPrefix(in.DecisionLines[0], "t=1000 "))
	assert.Empty(in.Applied)
	assert.Empty(in.Warnings)

	candidates := Inspect(buildSource("0", slowTiming, circles), DefaultOptions()).Candidates
	require.Len(t, candidates, 1)
	assert.Equal(1000.0, candidates[0].StartTime)
}

func TestResponse(t *testing.T) {
	res, err := Run(buildSource("0", plainTiming, circles), DefaultOptions())
	require.NoError(t, err)

	body := res.Response("a.osu")
	assert.Equal(t, res.Text, body.Chart)
	assert.Equal(t, "a.osu", body.FileName)
	assert.NotNil(t, body.Warnings)
	assert.NotEmpty(t, body.ElapsedDisplay)

	inspected := Inspect(res.Text, DefaultOptions()).Response()
	assert.NotNil(t, inspected.Segments)
	assert.NotNil(t, inspected.ClampEvents)
}
