package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Artifact names one stage's checkpoint file.
type Artifact string

const (
	Games           Artifact = "games.json"
	Badges          Artifact = "badges.json"
	AvailableBadges Artifact = "available_badges.json"
	MarketData      Artifact = "market_data.json"
	Results         Artifact = "results.json"
)

// stageFor maps each artifact to the stage that produces it, so a missing
// prerequisite can tell the user what to re-run.
var stageFor = map[Artifact]string{
	Games:           "catalog",
	Badges:          "discovery",
	AvailableBadges: "progress",
	MarketData:      "market",
	Results:         "analysis",
}

// MissingError reports a checkpoint a stage needs but that is not on disk.
type MissingError struct {
	Artifact Artifact
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s not found, run the %s stage first", e.Artifact, stageFor[e.Artifact])
}

// Store reads and writes stage checkpoints in one directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Path(a Artifact) string {
	return filepath.Join(s.dir, string(a))
}

// Exists reports whether the artifact is already on disk.
func (s *Store) Exists(a Artifact) bool {
	_, err := os.Stat(s.Path(a))
	return err == nil
}

// Save writes the artifact pretty-printed, keeping checkpoints diffable
// between runs.
func (s *Store) Save(a Artifact, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path(a), append(data, '\n'), 0o644)
}

// Load reads the artifact into out. A missing file becomes a MissingError
// naming the stage to run.
func (s *Store) Load(a Artifact, out interface{}) error {
	data, err := os.ReadFile(s.Path(a))
	if errors.Is(err, fs.ErrNotExist) {
		return &MissingError{Artifact: a}
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", a, err)
	}
	return nil
}
