package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/taikoshift/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourceChart = "osu file format v14\r\n\r\n[General]\r\nMode: 0\r\n\r\n[Metadata]\r\nVersion:Hard\r\n\r\n" +
	"[TimingPoints]\r\n0,500,4,2,0,100,1,0\r\n1000,1,4,2,0,100,1,0\r\n1500,500,4,2,0,100,1,0\r\n\r\n" +
	"[HitObjects]\r\n256,192,500,1,0,0:0:0:0:\r\n100,100,2000,2,0,L|300:100,1,1000\r\n"

func TestAnalyzeDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a [Hard].osu")
	require.NoError(t, os.WriteFile(src, []byte(sourceChart), 0644))

	opts := pipeline.DefaultOptions()
	_, _, err := pipeline.ConvertFile(src, "", opts)
	require.NoError(t, err)
	opts.ConstantSpeed = true
	opts.Sva = true
	_, _, err = pipeline.ConvertFile(src, "", opts)
	require.NoError(t, err)

	r, err := analyzeDir(dir)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(1, r.numSources)
	assert.Equal(int64(len(sourceChart)), r.sourceBytes)
	assert.Equal(2, r.numConverted)
	assert.Equal(1, r.numConstantSpeed)
	assert.Equal(1, r.numAdjusted)
	assert.Equal(1, r.adjustedSegments)
	assert.Equal(2, r.numWithSliders, "the long slider is kept whole")
}

func TestAnalyzeMissingDir(t *testing.T) {
	_, err := analyzeDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
