// Package dictionary loads suggestion lists from disk into a suggestion index.
package dictionary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// Adder receives loaded suggestions.
type Adder interface {
	AddAll(suggestions ...string)
}

// FileInfo contains metadata about a suggestion list file
type FileInfo struct {
	Name   string
	Path   string
	Format FileFormat
}

// LoadStats summarizes one load run
type LoadStats struct {
	Files   int
	Failed  int
	Entries int
	Elapsed time.Duration
}

// Loader reads every suggestion list in a directory
type Loader struct {
	dirPath    string
	maxEntries int
	maxRetries int
	retryDelay time.Duration
}

type batch struct {
	file    FileInfo
	entries []string
	err     error
}

// NewLoader creates a loader for dirPath. maxEntries caps the number of
// entries handed to the sink, 0 loads everything.
func NewLoader(dirPath string, maxEntries int) *Loader {
	return &Loader{
		dirPath:    dirPath,
		maxEntries: maxEntries,
		maxRetries: 3,
		retryDelay: 50 * time.Millisecond,
	}
}

// Available scans the directory for supported files, sorted by name
func (l *Loader) Available() ([]FileInfo, error) {
	dirEntries, err := os.ReadDir(l.dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", l.dirPath, err)
	}

	var files []FileInfo
	for _, e := range dirEntries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		path := filepath.Join(l.dirPath, e.Name())
		format, err := DetectFileFormat(path)
		if err != nil {
			log.Warnf("Skipping %s: %v", path, err)
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), Path: path, Format: format})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// LoadInto reads every available file in a background goroutine and hands
// the entries to sink in file name order. Files that keep failing after the
// retry budget are counted and skipped.
func (l *Loader) LoadInto(ctx context.Context, sink Adder) (LoadStats, error) {
	start := time.Now()
	stats := LoadStats{}

	files, err := l.Available()
	if err != nil {
		return stats, err
	}
	if len(files) == 0 {
		return stats, fmt.Errorf("no suggestion files found in %s", l.dirPath)
	}
	log.Debugf("Found %d suggestion files", len(files))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limitHit := false
	batches := make(chan batch, 4)
	go l.read(ctx, files, batches)

	for b := range batches {
		if b.err != nil {
			log.Errorf("Failed to load %s: %v", b.file.Path, b.err)
			stats.Failed++
			continue
		}

		entries := b.entries
		if l.maxEntries > 0 && stats.Entries+len(entries) > l.maxEntries {
			entries = entries[:l.maxEntries-stats.Entries]
		}
		sink.AddAll(entries...)
		stats.Files++
		stats.Entries += len(entries)
		log.Debugf("Loaded %s: %d entries", b.file.Name, len(entries))

		if l.maxEntries > 0 && stats.Entries >= l.maxEntries {
			log.Debugf("Entry limit %d reached", l.maxEntries)
			limitHit = true
			cancel()
			break
		}
	}

	stats.Elapsed = time.Since(start)
	if err := ctx.Err(); err != nil && !limitHit {
		return stats, err
	}
	return stats, nil
}

// read produces one batch per file, retrying failed reads.
func (l *Loader) read(ctx context.Context, files []FileInfo, out chan<- batch) {
	defer close(out)

	for _, f := range files {
		var entries []string
		var err error
		for attempt := 1; attempt <= l.maxRetries; attempt++ {
			entries, err = ReadFile(f.Path)
			if err == nil {
				break
			}
			if attempt < l.maxRetries {
				log.Debugf("Retrying %s (attempt %d/%d)", f.Path, attempt+1, l.maxRetries)
				select {
				case <-time.After(time.Duration(attempt) * l.retryDelay):
				case <-ctx.Done():
					return
				}
			}
		}

		select {
		case out <- batch{file: f, entries: entries, err: err}:
		case <-ctx.Done():
			return
		}
	}
}
