package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// tokenFilePattern is the set of tokens that may become file names.
// Anything else (wrong length, non-hex, path separators) is treated as
// an unknown token rather than a filesystem path.
var tokenFilePattern = regexp.MustCompile(`^[0-9a-f]{6,32}$`)

// DecisionRecord is one stored email-reply decision. A second reply
// carrying the same token overwrites the prior record; there are no
// merge semantics.
type DecisionRecord struct {
	Token    string `json:"token"`
	Decision string `json:"decision"`
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TS       string `json:"ts"`
}

// DecisionStore persists decisions as <token>.json under a directory.
type DecisionStore struct {
	dir string
}

// NewDecisionStore creates the directory if needed and returns a store
// over it.
func NewDecisionStore(dir string) (*DecisionStore, error) {
	d, err := openDir(dir)
	if err != nil {
		return nil, err
	}
	return &DecisionStore{dir: d}, nil
}

// Put writes the record, replacing any prior record for the same token.
func (s *DecisionStore) Put(rec DecisionRecord) error {
	token := strings.ToLower(rec.Token)
	if !tokenFilePattern.MatchString(token) {
		return fmt.Errorf("invalid token %q", rec.Token)
	}
	rec.Token = token

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal decision %s: %w", token, err)
	}
	path := filepath.Join(s.dir, token+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write decision %s: %w", token, err)
	}
	return nil
}

// Get looks up a decision by token. The boolean reports whether a
// record exists; tokens that could not name a record file report false
// without touching the filesystem. A record that exists but cannot be
// read or parsed returns an error.
func (s *DecisionStore) Get(token string) (DecisionRecord, bool, error) {
	token = strings.ToLower(token)
	if !tokenFilePattern.MatchString(token) {
		return DecisionRecord{}, false, nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, token+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return DecisionRecord{}, false, nil
	}
	if err != nil {
		return DecisionRecord{}, false, fmt.Errorf("read decision %s: %w", token, err)
	}

	var rec DecisionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return DecisionRecord{}, false, fmt.Errorf("parse decision %s: %w", token, err)
	}
	return rec, true, nil
}

// Recent returns up to limit records, newest first by file modification
// time. Unreadable or malformed files are skipped.
func (s *DecisionStore) Recent(limit int) ([]DecisionRecord, error) {
	files, err := jsonFiles(s.dir)
	if err != nil {
		return nil, err
	}

	out := make([]DecisionRecord, 0, limit)
	for _, path := range files {
		if len(out) >= limit {
			break
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec DecisionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Stats reports the record count and the newest record's modification
// time for health reporting.
func (s *DecisionStore) Stats() (int, time.Time, error) {
	return dirStats(s.dir)
}
