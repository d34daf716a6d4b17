// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"dtmf/internal/detect"
	"dtmf/internal/log"
)

var errMissingAlgorithm = errors.New("no algorithm stored")

// State is the operator state that survives restarts.
type State struct {
	Algorithm detect.Algorithm `yaml:"algorithm"`
}

// StateStore reads and writes the State file.
type StateStore struct {
	path string
}

func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

func (s *StateStore) Path() string {
	return s.path
}

// Load returns the stored state. A missing, unreadable or invalid file
// falls back to the FFT algorithm, which is written back.
func (s *StateStore) Load() (State, error) {
	st, err := s.read()
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("state: resetting %s to %s: %v", s.path, detect.FFT, err)
	}

	st = State{Algorithm: detect.FFT}
	if err := s.Save(st); err != nil {
		return st, err
	}
	return st, nil
}

func (s *StateStore) read() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return State{}, err
	}

	var raw struct {
		Algorithm *detect.Algorithm `yaml:"algorithm"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return State{}, fmt.Errorf("failed to parse state file: %w", err)
	}
	if raw.Algorithm == nil || !raw.Algorithm.Valid() {
		return State{}, errMissingAlgorithm
	}
	return State{Algorithm: *raw.Algorithm}, nil
}

// Save writes st atomically.
func (s *StateStore) Save(st State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// SaveAlgorithm persists a new algorithm selection.
func (s *StateStore) SaveAlgorithm(algo detect.Algorithm) error {
	return s.Save(State{Algorithm: algo})
}
