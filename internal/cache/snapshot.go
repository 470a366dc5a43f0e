package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot kinds written after every live fetch
const (
	KindUsers       = "users"
	KindComparisons = "comparisons"
	KindClaims      = "claims"
	KindVotes       = "votes"
)

// Snapshots stores typed run snapshots in a Cache
type Snapshots struct {
	cache Cache
	run   string
	ttl   time.Duration
}

// NewSnapshots binds a cache to a run name
func NewSnapshots(c Cache, run string, ttl time.Duration) *Snapshots {
	return &Snapshots{cache: c, run: run, ttl: ttl}
}

// Load decodes the snapshot of kind into v. It reports false on a miss or
// an undecodable entry.
func (s *Snapshots) Load(kind string, v any) bool {
	data, ok := s.cache.Get(Key(s.run, kind))
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// Save encodes v as the snapshot of kind
func (s *Snapshots) Save(kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", kind, err)
	}
	if err := s.cache.Set(Key(s.run, kind), data, s.ttl); err != nil {
		return fmt.Errorf("store %s snapshot: %w", kind, err)
	}
	return nil
}
