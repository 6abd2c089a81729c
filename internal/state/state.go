// Package state persists resolved resource records to a local JSON file so
// that re-running apply against an unchanged stack issues no mutating
// provider calls.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/v2kk/stackctl/internal/resource"
)

// fileVersion is bumped when the on-disk layout changes.
const fileVersion = 1

// Record is the stored outcome of one applied declaration.
type Record struct {
	// Kind is the declaration's resource kind.
	Kind string `json:"kind"`
	// Name is the declaration's logical name.
	Name string `json:"name"`
	// ID is the provider-assigned identifier, empty for read-only kinds.
	ID string `json:"id,omitempty"`
	// InputHash is the hash of the resolved input properties at apply time.
	InputHash string `json:"inputHash"`
	// Outputs are the provider-assigned output attributes.
	Outputs map[string]string `json:"outputs,omitempty"`
	// AppliedAt is when the record was last written.
	AppliedAt time.Time `json:"appliedAt"`
	// RunID identifies the apply run that wrote the record.
	RunID string `json:"runId,omitempty"`
}

// stackState holds the records of one stack keyed by "<kind>/<name>".
type stackState struct {
	Resources map[string]*Record `json:"resources"`
}

// fileState is the on-disk document.
type fileState struct {
	Version int                    `json:"version"`
	Stacks  map[string]*stackState `json:"stacks"`
}

// Store manages the local state file.
type Store struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	data fileState
}

// Open loads the state file at path, starting empty when the file does not
// exist yet.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		path:   path,
		logger: logger,
		data:   fileState{Version: fileVersion, Stacks: make(map[string]*stackState)},
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no state file yet, starting empty", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file %q: %w", path, err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode state file %q: %w", path, err)
	}
	if s.data.Version > fileVersion {
		return nil, fmt.Errorf("state file %q has version %d, this build understands up to %d", path, s.data.Version, fileVersion)
	}
	if s.data.Stacks == nil {
		s.data.Stacks = make(map[string]*stackState)
	}
	return s, nil
}

// Get returns the stored record for a declaration key within a stack.
func (s *Store) Get(stack, key string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.data.Stacks[stack]
	if !ok || ss.Resources == nil {
		return nil, false
	}
	rec, ok := ss.Resources[key]
	return rec, ok
}

// Put stores a record for a declaration key within a stack.
func (s *Store) Put(stack, key string, rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.data.Stacks[stack]
	if !ok {
		ss = &stackState{Resources: make(map[string]*Record)}
		s.data.Stacks[stack] = ss
	}
	if ss.Resources == nil {
		ss.Resources = make(map[string]*Record)
	}
	ss.Resources[key] = rec
}

// Delete removes the record for a declaration key within a stack.
func (s *Store) Delete(stack, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ss, ok := s.data.Stacks[stack]; ok {
		delete(ss.Resources, key)
	}
}

// Records returns a copy of the record map for a stack.
func (s *Store) Records(stack string) map[string]*Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*Record)
	if ss, ok := s.data.Stacks[stack]; ok {
		for k, v := range ss.Resources {
			out[k] = v
		}
	}
	return out
}

// Save writes the state file atomically (temp file + rename), creating the
// parent directory when needed.
func (s *Store) Save() error {
	s.mu.Lock()
	raw, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace state file %q: %w", s.path, err)
	}

	s.logger.Debug("state saved", "path", s.path)
	return nil
}

// HashInputs computes a stable hash of resolved declaration properties.
// Encoding relies on encoding/json emitting map keys in sorted order.
func HashInputs(props resource.Properties) (string, error) {
	raw, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("encode properties for hashing: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
