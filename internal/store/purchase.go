package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Purchase is a purchase-event payload. Payloads are stored as
// received, minus validation, so the shape stays open.
type Purchase map[string]any

// PurchaseStore persists purchase events as purchase_<unix-ms>.json
// under a directory. Millisecond-stamped names make collisions
// practically impossible; there is no update or delete path.
type PurchaseStore struct {
	dir string
	now func() time.Time
}

// NewPurchaseStore creates the directory if needed and returns a store
// over it.
func NewPurchaseStore(dir string) (*PurchaseStore, error) {
	d, err := openDir(dir)
	if err != nil {
		return nil, err
	}
	return &PurchaseStore{dir: d, now: time.Now}, nil
}

// Put stamps the payload with the server timestamp and persists it.
// It returns the generated file name.
func (s *PurchaseStore) Put(payload Purchase) (string, error) {
	now := s.now()
	payload["ts"] = Timestamp(now)

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal purchase: %w", err)
	}

	name := fmt.Sprintf("purchase_%d.json", now.UnixMilli())
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write purchase %s: %w", name, err)
	}
	return name, nil
}

// Recent returns up to limit payloads, newest first by file
// modification time. Unreadable or malformed files are skipped.
func (s *PurchaseStore) Recent(limit int) ([]Purchase, error) {
	files, err := jsonFiles(s.dir)
	if err != nil {
		return nil, err
	}

	out := make([]Purchase, 0, limit)
	for _, path := range files {
		if len(out) >= limit {
			break
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var p Purchase
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Stats reports the record count and the newest record's modification
// time for health reporting.
func (s *PurchaseStore) Stats() (int, time.Time, error) {
	return dirStats(s.dir)
}

// Amount reads the numeric "amount" field of a payload, returning 0
// when the field is absent or not a number. JSON numbers decode as
// float64; integers sent by stricter clients decode the same way.
func Amount(p Purchase) float64 {
	switch v := p["amount"].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

// Total sums the amounts of the given payloads.
func Total(purchases []Purchase) float64 {
	var total float64
	for _, p := range purchases {
		total += Amount(p)
	}
	return total
}
