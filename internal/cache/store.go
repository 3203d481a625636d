// Package cache is a keyed artifact store for expensive fits. Artifacts are
// JSON files under the cache directory, each carrying the hash of the dataset
// it was computed from; a hash mismatch marks the artifact as stale instead of
// silently reusing it.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrStale marks an artifact computed from different data than the current
// run. Callers decide whether to recompute or force reuse.
var ErrStale = errors.New("cached artifact is stale")

// Meta identifies an artifact.
type Meta struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	DataHash  string    `json:"data_hash"`
	CreatedAt time.Time `json:"created_at"`
}

type envelope struct {
	Meta    Meta            `json:"meta"`
	Payload json.RawMessage `json:"payload"`
}

// Store is a directory of keyed artifacts.
type Store struct {
	Dir string
}

// New creates the cache directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir cache dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

// Save writes the artifact atomically (tmp file + rename) with fresh meta.
func (s *Store) Save(key, dataHash string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", key, err)
	}
	env := envelope{
		Meta: Meta{
			ID:        uuid.NewString(),
			Key:       key,
			DataHash:  dataHash,
			CreatedAt: time.Now(),
		},
		Payload: raw,
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal envelope %s: %w", key, err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	return os.Rename(tmp, s.path(key))
}

// Load reads an artifact into payload. It returns (false, nil) when absent and
// ErrStale (with the meta filled in) when the stored data hash does not match
// dataHash. An empty dataHash skips the staleness check.
func (s *Store) Load(key, dataHash string, payload any) (bool, *Meta, error) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("read artifact %s: %w", key, err)
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return false, nil, fmt.Errorf("parse artifact %s: %w", key, err)
	}
	if dataHash != "" && env.Meta.DataHash != dataHash {
		return false, &env.Meta, fmt.Errorf("artifact %s: %w (stored %.12s, current %.12s)",
			key, ErrStale, env.Meta.DataHash, dataHash)
	}
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return false, nil, fmt.Errorf("decode artifact %s: %w", key, err)
	}
	return true, &env.Meta, nil
}

// Remove deletes an artifact; absent is not an error.
func (s *Store) Remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove artifact %s: %w", key, err)
	}
	return nil
}
