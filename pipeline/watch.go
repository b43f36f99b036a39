package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/jsphweid/taikoshift/logger"
)

// WatchEvent reports one conversion done by Watch.
type WatchEvent struct {
	Input  string
	Output string
	Result *Result
	Err    error
}

// Watch converts every chart written into dir once it has been quiet for
// wait, until ctx is done. Output goes to outDir, or next to the source
// when outDir is empty. Converted files are never picked up again.
func Watch(ctx context.Context, dir, outDir string, wait time.Duration, opts Options, done func(WatchEvent)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Info("watching", logger.String("dir", dir), logger.Duration("debounce", wait))

	pending := make(map[string]func(func()))
	ready := make(chan string)
	stop := make(chan struct{})
	defer close(stop)

	convert := func(path string) {
		target := outDir
		if target == "" {
			target = filepath.Dir(path)
		}
		res, out, err := ConvertIntoDir(path, target, opts)
		if err != nil {
			logger.Warn("watch conversion failed", logger.String("path", path), logger.ErrorField(err))
		}
		if done != nil {
			done(WatchEvent{Input: path, Output: out, Result: res, Err: err})
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			path := event.Name
			if !strings.EqualFold(filepath.Ext(path), ".osu") || IsConvertedName(path) || strings.HasPrefix(filepath.Base(path), ".") {
				continue
			}
			d, ok := pending[path]
			if !ok {
				d = debounce.New(wait)
				pending[path] = d
			}
			d(func() {
				select {
				case ready <- path:
				case <-stop:
				}
			})

		case path := <-ready:
			convert(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logger.ErrorField(err))
		}
	}
}
