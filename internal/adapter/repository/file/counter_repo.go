// Package file provides a plain-file counter store: a JSON document
// holding the last issued value, guarded by a sidecar lock file so
// concurrent runs serialize their read-increment-write cycles.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// lockRetryInterval is how long Next waits between attempts to take
// the sidecar lock.
const lockRetryInterval = 25 * time.Millisecond

type counterFile struct {
	Counter uint64 `json:"counter"`
}

// CounterStore keeps the id counter in a JSON file next to a ".lock"
// sidecar.
type CounterStore struct {
	path     string
	lockPath string
}

// NewCounterStore creates a store at path. The file is created on
// first use.
func NewCounterStore(path string) *CounterStore {
	return &CounterStore{path: path, lockPath: path + ".lock"}
}

// Next increments the stored counter and returns the new value. The
// whole cycle runs under the sidecar lock; ctx bounds how long to wait
// for it.
func (s *CounterStore) Next(ctx context.Context) (uint64, error) {
	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	current, err := s.read()
	if err != nil {
		return 0, err
	}

	next := current + 1
	if err := s.write(next); err != nil {
		return 0, err
	}

	return next, nil
}

func (s *CounterStore) acquireLock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create counter directory: %w", err)
	}

	for {
		f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return func() { os.Remove(s.lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("acquire counter lock: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire counter lock: %w", ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}

func (s *CounterStore) read() (uint64, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter file: %w", err)
	}

	var cf counterFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return 0, fmt.Errorf("parse counter file: %w", err)
	}

	return cf.Counter, nil
}

func (s *CounterStore) write(value uint64) error {
	data, err := json.Marshal(counterFile{Counter: value})
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write counter file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace counter file: %w", err)
	}

	return nil
}
