//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/cmd"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/pipeline"
	"github.com/jsphweid/taikoshift/preview"
	"github.com/jsphweid/taikoshift/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = "osu file format v14\r\n\r\n[General]\r\nMode: 0\r\n\r\n" +
	"[Metadata]\r\nTitle:Song\r\nVersion:Insane\r\nBeatmapID:4242\r\n\r\n" +
	"[Difficulty]\r\nSliderMultiplier:1.4\r\nSliderTickRate:1\r\n\r\n" +
	"[TimingPoints]\r\n0,500,4,2,0,100,1,0\r\n1000,1,4,2,0,100,1,0\r\n1500,500,4,2,0,100,1,0\r\n3000,500,0,2,0,100,1,0\r\n\r\n" +
	"[HitObjects]\r\n" +
	"256,192,500,1,0,0:0:0:0:\r\n" +
	"100,100,2000,2,2,L|300:100,1,200\r\n" +
	"100,100,4000,2,0,L|300:100,1,1000\r\n" +
	"10,10,8000,2,0,L,1,-5\r\n" +
	"256,192,9000,12,0,10000,0:0:0:0:\r\n"

func createReqBody(req model.ConvertRequest) io.Reader {
	data, err := json.Marshal(req)
	if err != nil {
		panic(err.Error())
	}
	return bytes.NewReader(data)
}

func TestConvertOverHTTP(t *testing.T) {
	server := httptest.NewServer(cmd.NewRouter())
	defer server.Close()

	resp, err := http.Post(server.URL+"/convert", "application/json",
		createReqBody(model.ConvertRequest{Chart: source, ConstantSpeed: true, Sva: true}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert := assert.New(t)
	assert.Equal(200, resp.StatusCode)

	var res model.ConvertResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))

	doc := chart.Parse(res.Chart)
	assert.Equal(128, doc.FormatVersion())
	assert.Contains(res.Chart, "BeatmapID:0")
	assert.Contains(res.Chart, "Version:Insane (taiko convert) (constant speed adjusted)")
	assert.True(res.SvaApplied)
	assert.Equal(3, res.SlidersBefore)
	assert.Equal(2, res.SlidersAfter, "the long slider and the repaired one stay whole")
	assert.NotContains(res.Chart, "3000,500,0,", "the zero meter is fixed")
}

func TestBatchThenPreview(t *testing.T) {
	songs := t.TempDir()
	for _, name := range []string{"a [Easy].osu", "b [Hard].osu"} {
		require.NoError(t, os.WriteFile(filepath.Join(songs, name), []byte(source), 0644))
	}
	paths, err := util.GatherAllChartPaths(songs, 0)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "taiko")
	report, err := pipeline.RunBatch(context.Background(), pipeline.CreateJobs(paths), out, 0, pipeline.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 2, report.Converted)

	converted := report.Outputs[paths[0]]
	assert.True(t, strings.HasSuffix(converted, "[Easy (taiko convert)].osu"))

	data, err := os.ReadFile(converted)
	require.NoError(t, err)
	mid := filepath.Join(t.TempDir(), "a.mid")
	sum, err := preview.WriteFile(mid, string(data))
	require.NoError(t, err)

	s, err := preview.ReadFile(mid)
	require.NoError(t, err)
	hits := preview.Hits(s)
	assert.Len(t, hits, sum.Notes())
	assert.Equal(t, int64(500), hits[0].TimeMs)
}
