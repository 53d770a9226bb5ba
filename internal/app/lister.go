package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"webpbatch/internal/worker"

	"go.uber.org/zap"
)

// FileLister discovers input files under a source root
type FileLister struct {
	root       string
	types      []string // lowercase, no leading dot; empty matches every file
	matches    []string // glob patterns on base names; empty matches every file
	skipSuffix string   // files already carrying the output suffix are never inputs
	logger     *zap.Logger
}

// List walks the root and returns matching files. Files are grouped by
// extension in the order of types and sorted lexicographically within each
// group. An empty result is not an error.
func (l *FileLister) List(ctx context.Context) ([]worker.Task, error) {
	byType := make(map[string][]worker.Task)

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == l.root {
				return err
			}
			l.logger.Warn("Skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		name := d.Name()
		key, ok := l.typeKey(name)
		if !ok || !l.nameMatches(name) {
			return nil
		}

		// os.Stat follows symlinks; links to directories are not descended.
		info, err := os.Stat(path)
		if err != nil {
			l.logger.Warn("Skipping file without stat", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		byType[key] = append(byType[key], worker.Task{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", l.root, err)
	}

	var tasks []worker.Task
	appendSorted := func(group []worker.Task) {
		sort.Slice(group, func(i, j int) bool { return group[i].Path < group[j].Path })
		tasks = append(tasks, group...)
	}

	if len(l.types) == 0 {
		appendSorted(byType[""])
	} else {
		seen := make(map[string]bool, len(l.types))
		for _, t := range l.types {
			if seen[t] {
				continue
			}
			seen[t] = true
			appendSorted(byType[t])
		}
	}

	l.logger.Debug("Finished listing files",
		zap.String("root", l.root),
		zap.Int("total_files", len(tasks)),
	)

	return tasks, nil
}

// typeKey returns the bucket name for a file, or false if it is not an input.
func (l *FileLister) typeKey(name string) (string, bool) {
	lower := strings.ToLower(name)
	if l.skipSuffix != "" && strings.HasSuffix(lower, strings.ToLower(l.skipSuffix)) {
		return "", false
	}
	if len(l.types) == 0 {
		return "", true
	}

	ext := strings.TrimPrefix(filepath.Ext(lower), ".")
	for _, t := range l.types {
		if ext == t {
			return t, true
		}
	}
	return "", false
}

func (l *FileLister) nameMatches(name string) bool {
	if len(l.matches) == 0 {
		return true
	}
	for _, m := range l.matches {
		if ok, _ := filepath.Match(m, name); ok {
			return true
		}
	}
	return false
}
