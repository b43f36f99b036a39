package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/jsphweid/taikoshift/logger"
	"github.com/jsphweid/taikoshift/util"
	"github.com/remeh/sizedwaitgroup"
	"golang.org/x/exp/slices"
)

// Jobs numbers chart paths in the order given.
type Jobs map[uint32]string

func CreateJobs(paths []string) Jobs {
	res := make(Jobs)
	for i, v := range paths {
		res[uint32(i)] = v
	}
	return res
}

type BatchReport struct {
	Converted    int
	Failed       int
	BytesWritten int64
	Outputs      map[string]string
	Errors       map[string]error
	Elapsed      time.Duration
}

// RunBatch converts the jobs on up to workers goroutines (one per CPU when
// workers <= 0), starting them in job order and writing into outDir, or next
// to each source when outDir is empty. A failing chart is recorded and the
// batch moves on. No new job starts once ctx is done.
func RunBatch(ctx context.Context, jobs Jobs, outDir string, workers int, opts Options) (BatchReport, error) {
	start := time.Now()
	report := BatchReport{Outputs: make(map[string]string), Errors: make(map[string]error)}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return report, fmt.Errorf("creating %s: %w", outDir, err)
		}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mu sync.Mutex
	wg := sizedwaitgroup.New(workers)

	keys := util.GetKeys(jobs)
	slices.Sort(keys)
	var err error
	for i, num := range keys {
		if err = ctx.Err(); err != nil {
			break
		}
		in := jobs[num]
		if IsConvertedName(in) {
			continue
		}
		logger.Info("converting", logger.Int("n", i+1), logger.Int("of", len(keys)), logger.String("path", in))

		dir := outDir
		if dir == "" {
			dir = filepath.Dir(in)
		}
		wg.Add()
		go func(in, dir string) {
			defer wg.Done()
			res, written, err := ConvertIntoDir(in, dir, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("skipping chart", logger.String("path", in), logger.ErrorField(err))
				report.Failed++
				report.Errors[in] = err
				return
			}
			report.Converted++
			report.BytesWritten += int64(len(res.Text))
			report.Outputs[in] = written
		}(in, dir)
	}
	wg.Wait()
	report.Elapsed = time.Since(start)
	return report, err
}
