package util

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/constraints"
)

// GatherAllChartPaths walks path and returns every .osu file below it, at
// most maxNum of them when maxNum > 0.
func GatherAllChartPaths(path string, maxNum int) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(s), ".osu") {
			if maxNum == 0 || len(res) < maxNum {
				res = append(res, s)
			}
		}
		return nil
	}
	if err := filepath.WalkDir(path, walk); err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	return res, nil
}

// WriteFileAtomic writes data next to filename under a random name and
// renames it into place, so readers never see a half-written chart.
func WriteFileAtomic(filename string, data []byte) error {
	dir := filepath.Dir(filename)
	tmp := filepath.Join(dir, "."+uuid.New().String()+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming into %s: %w", filename, err)
	}
	return nil
}

func GetKeys[A comparable, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func Clamp[A constraints.Ordered](v, lo, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Sum[A constraints.Integer](nums []A) int64 {
	var total int64
	for _, v := range nums {
		total += int64(v)
	}
	return total
}

// Set is a small membership set keyed by any comparable type.
type Set[A comparable] map[A]struct{}

func NewSet[A comparable](items ...A) Set[A] {
	s := make(Set[A], len(items))
	for _, v := range items {
		s.Add(v)
	}
	return s
}

func (s Set[A]) Add(v A) {
	s[v] = struct{}{}
}

func (s Set[A]) Has(v A) bool {
	if s == nil {
		return false
	}
	_, ok := s[v]
	return ok
}

func (s Set[A]) Len() int {
	return len(s)
}
