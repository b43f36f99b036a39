package util

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{-100, "-100"},
		{140, "140"},
		{-200, "-200"},
		{0.1, "0.10000000000000001"},
		{3.0517578125e-05, "3.0517578125E-05"},
		{1e21, "1E+21"},
		{math.Inf(1), "Infinity"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}
}

func TestFormatTrimmed(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("120", FormatTrimmed(120))
	assert.Equal("1.359", FormatTrimmed(1.359))
	assert.Equal("21.75", FormatTrimmed(21.75))
	assert.Equal("0.33333333", FormatTrimmed(1.0/3.0))
	assert.Equal("0", FormatTrimmed(-0.000000001))
}

func TestRoundMsTiesToEven(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(int64(2), RoundMs(2.5))
	assert.Equal(int64(4), RoundMs(3.5))
	assert.Equal(int64(101), RoundMs(100.6))
}

func TestParseFloatAcceptsOverflowAsInfinity(t *testing.T) {
	v, ok := ParseFloat("1e400")
	assert := assert.New(t)
	assert.True(ok)
	assert.True(math.IsInf(v, 1))

	_, ok = ParseFloat("abc")
	assert.False(ok)
}

func TestGatherAllChartPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"a.osu", "b.OSU", "c.txt", "sub/d.osu"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	paths, err := GatherAllChartPaths(dir, 0)
	require.NoError(t, err)
	sort.Strings(paths)

	assert := assert.New(t)
	assert.Len(paths, 3)
	assert.Equal(filepath.Join(dir, "a.osu"), paths[0])

	limited, err := GatherAllChartPaths(dir, 2)
	require.NoError(t, err)
	assert.Len(limited, 2)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.osu")

	require.NoError(t, WriteFileAtomic(target, []byte("hello")))
	data, err := os.ReadFile(target)
	require.NoError(t, err)

	entries, _ := os.ReadDir(dir)
	assert := assert.New(t)
	assert.Equal("hello", string(data))
	assert.Len(entries, 1)
}

func TestSet(t *testing.T) {
	s := NewSet(1, 2)
	s.Add(3)

	var empty Set[int]
	assert := assert.New(t)
	assert.True(s.Has(3))
	assert.False(s.Has(4))
	assert.Equal(3, s.Len())
	assert.False(empty.Has(1))
}

func TestClampAndSum(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(512, Clamp(600, 0, 512))
	assert.Equal(0, Clamp(-3, 0, 512))
	assert.Equal(int64(6), Sum([]int{1, 2, 3}))
}
