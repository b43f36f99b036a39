package preview

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChart(timingLines, objectLines []string) string {
	return "osu file format v14\n\n[TimingPoints]\n" + strings.Join(timingLines, "\n") +
		"\n\n[HitObjects]\n" + strings.Join(objectLines, "\n") + "\n"
}

var objects = []string{
	"256,192,0,1,0,0:0:0:0:",
	"256,192,500,1,2,0:0:0:0:",
	"256,192,750,1,4,0:0:0:0:",
	"256,192,1000,1,12,0:0:0:0:",
	"100,100,1500,2,0,L|300:100,1,1000",
	"256,192,3000,12,0,4000,0:0:0:0:",
	"garbage",
}

func TestBuildSummary(t *testing.T) {
	_, sum, err := Build(buildChart([]string{"0,500,4,2,0,100,1,0"}, objects))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(120.0, sum.Bpm)
	assert.Equal(2, sum.Dons)
	assert.Equal(2, sum.Kats)
	assert.Equal(1, sum.Rolls)
	assert.Equal(1, sum.Swells)
	assert.Equal(6, sum.Notes())
}

func TestRoundTrip(t *testing.T) {
	data, _, err := Encode(buildChart([]string{"0,500,4,2,0,100,1,0"}, objects))
	require.NoError(t, err)

	s, err := Read(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []Hit{
		{TimeMs: 0, Key: DonKey},
		{TimeMs: 500, Key: KatKey},
		{TimeMs: 750, Key: DonKey, Finish: true},
		{TimeMs: 1000, Key: KatKey, Finish: true},
		{TimeMs: 1500, Key: RollKey},
		{TimeMs: 3000, Key: SwellKey},
	}, Hits(s))
}

func TestBuildDefaultsTempo(t *testing.T) {
	_, sum, err := Build(buildChart(nil, objects[:1]))
	require.NoError(t, err)
	assert.Equal(t, 120.0, sum.Bpm)
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.mid")
	sum, err := WriteFile(path, buildChart([]string{"0,250,4,2,0,100,1,0"}, objects[:2]))
	require.NoError(t, err)
	assert.Equal(t, 240.0, sum.Bpm)

	s, err := ReadFile(path)
	require.NoError(t, err)
	hits := Hits(s)
	require.Len(t, hits, 2)
	assert.Equal(t, int64(500), hits[1].TimeMs)
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mid")
	require.NoError(t, os.WriteFile(path, []byte("not a midi file"), 0644))
	_, err := ReadFile(path)
	assert.Error(t, err)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)
}
