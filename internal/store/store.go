// Package store persists decision and purchase records as one JSON
// document per file. There is no index: listing is a directory scan
// sorted by modification time, which is acceptable at this scale.
// Writes to distinct paths are independent; a re-write of the same
// token's file is non-atomic relative to concurrent reads and the
// service accepts that eventual consistency.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// openDir ensures a storage directory exists. Failure here is the one
// unrecoverable startup condition the service has.
func openDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("storage directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage directory %s: %w", dir, err)
	}
	return dir, nil
}

// jsonFiles returns the .json files in dir sorted by modification time,
// newest first.
func jsonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}
	files := make([]fileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{
			path:    filepath.Join(dir, e.Name()),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// dirStats reports the number of .json records in dir and the
// modification time of the newest one (zero when the dir is empty).
func dirStats(dir string) (int, time.Time, error) {
	files, err := jsonFiles(dir)
	if err != nil {
		return 0, time.Time{}, err
	}
	var latest time.Time
	if len(files) > 0 {
		if info, err := os.Stat(files[0]); err == nil {
			latest = info.ModTime()
		}
	}
	return len(files), latest, nil
}

// Timestamp renders t in the ISO8601 UTC form used across stored
// records and API responses.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000") + "Z"
}
