package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/dustin/go-humanize"
	"github.com/jsphweid/taikoshift/chart"
	"github.com/jsphweid/taikoshift/pipeline"
	"github.com/jsphweid/taikoshift/speed"
	"github.com/jsphweid/taikoshift/sva"
	"github.com/jsphweid/taikoshift/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <dir>",
	Short: "Summarizes the charts under a directory",
	Long:  `Counts source and converted charts under a directory and how many of the converted ones needed clamping or visual assist.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := analyzeDir(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("source charts: %d (%s)\n", r.numSources, humanize.Bytes(uint64(r.sourceBytes)))
		fmt.Printf("converted charts: %d (%s)\n", r.numConverted, humanize.Bytes(uint64(r.convertedBytes)))
		fmt.Printf("  constant speed: %d\n", r.numConstantSpeed)
		fmt.Printf("  with clamped scroll speed: %d (%d clamps)\n", r.numClamped, r.clampEvents)
		fmt.Printf("  with visual assist: %d (%d sections)\n", r.numAdjusted, r.adjustedSegments)
		fmt.Printf("  still holding sliders: %d (%d sliders)\n", r.numWithSliders, r.sliders)
		if r.numSources > 0 {
			fmt.Printf("converted per source: %.2f\n", float64(r.numConverted)/float64(r.numSources))
		}
		return nil
	},
}

var constantSpeedName = regexp.MustCompile(`\(constant speed( adjusted)?\)`)

type dirReport struct {
	numSources     int
	sourceBytes    int64
	numConverted   int
	convertedBytes int64

	numConstantSpeed int
	numClamped       int
	clampEvents      int
	numAdjusted      int
	adjustedSegments int
	numWithSliders   int
	sliders          int
}

func analyzeDir(dir string) (dirReport, error) {
	var report dirReport
	paths, err := util.GatherAllChartPaths(dir, 0)
	if err != nil {
		return report, err
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return report, err
		}
		size := info.Size()
		if !pipeline.IsConvertedName(path) {
			report.numSources += 1
			report.sourceBytes += size
			continue
		}

		report.numConverted += 1
		report.convertedBytes += size
		if constantSpeedName.MatchString(filepath.Base(path)) {
			report.numConstantSpeed += 1
		}

		text, err := chart.ReadFile(path)
		if err != nil {
			return report, err
		}
		if events := speed.ParseClampEvents(text); len(events) > 0 {
			report.numClamped += 1
			report.clampEvents += len(events)
		}
		if segs := sva.DetectApplied(text); len(segs) > 0 {
			report.numAdjusted += 1
			report.adjustedSegments += len(segs)
		}
		if n := chart.Parse(text).CountSliders(); n > 0 {
			report.numWithSliders += 1
			report.sliders += n
		}
	}
	return report, nil
}
