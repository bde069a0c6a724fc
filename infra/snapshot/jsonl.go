package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	coresnap "github.com/kilianp07/vesselpower/core/snapshot"
)

// RotatingJSONLStore appends snapshots to a JSONL file with automatic rotation.
type RotatingJSONLStore struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
	path   string
}

// NewRotatingJSONLStore creates a store with rotation options in megabytes and days.
func NewRotatingJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLStore, error) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   false,
	}
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &RotatingJSONLStore{logger: lj, path: path}, nil
}

// Save writes the snapshot and triggers rotation if needed.
func (s *RotatingJSONLStore) Save(_ context.Context, v coresnap.Vessel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.NewEncoder(s.logger).Encode(v)
}

// Load returns the latest snapshot of vesselID across the active and rotated files.
func (s *RotatingJSONLStore) Load(_ context.Context, vesselID string) (coresnap.Vessel, error) {
	all, err := s.readAll()
	if err != nil {
		return coresnap.Vessel{}, err
	}
	var (
		latest coresnap.Vessel
		found  bool
	)
	for _, v := range all {
		if v.VesselID != vesselID {
			continue
		}
		if !found || !v.SavedAt.Before(latest.SavedAt) {
			latest, found = v, true
		}
	}
	if !found {
		return coresnap.Vessel{}, coresnap.ErrNotFound
	}
	return latest, nil
}

// Vessels lists the ids that have at least one snapshot.
func (s *RotatingJSONLStore) Vessels(_ context.Context) ([]string, error) {
	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, v := range all {
		if _, ok := seen[v.VesselID]; ok {
			continue
		}
		seen[v.VesselID] = struct{}{}
		ids = append(ids, v.VesselID)
	}
	sort.Strings(ids)
	return ids, nil
}

// readAll decodes every record of the rotated files and the active file.
// Malformed lines are skipped.
func (s *RotatingJSONLStore) readAll() ([]coresnap.Vessel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ext := filepath.Ext(s.path)
	prefix := s.path[:len(s.path)-len(ext)]
	files, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil {
		return nil, err
	}
	// lumberjack backup names carry a sortable timestamp.
	sort.Strings(files)
	files = append(files, s.path)
	var res []coresnap.Vessel
	for _, f := range files {
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			var v coresnap.Vessel
			if err := json.Unmarshal(scanner.Bytes(), &v); err != nil {
				continue
			}
			res = append(res, v)
		}
		_ = file.Close()
	}
	return res, nil
}

// Close closes the underlying writer.
func (s *RotatingJSONLStore) Close() error {
	return s.logger.Close()
}
