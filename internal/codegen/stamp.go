package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Stamp is the on-disk record of the last run per target. A target whose
// schema hash still matches, whose last result needs no retry, and whose
// output still exists is skipped.
type Stamp struct {
	Targets map[string]StampEntry `toml:"targets"`
}

type StampEntry struct {
	SchemaHash  string    `toml:"schema_hash"`
	Outcome     string    `toml:"outcome"`
	Output      string    `toml:"output"`
	Retry       bool      `toml:"retry"`
	RunID       string    `toml:"run_id"`
	GeneratedAt time.Time `toml:"generated_at"`
}

// LoadStamp reads path. A missing file is an empty stamp.
func LoadStamp(path string) (Stamp, error) {
	s := Stamp{Targets: map[string]StampEntry{}}
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stamp{Targets: map[string]StampEntry{}}, nil
		}
		return Stamp{Targets: map[string]StampEntry{}}, fmt.Errorf("codegen: read stamp %s: %w", path, err)
	}
	if s.Targets == nil {
		s.Targets = map[string]StampEntry{}
	}
	return s, nil
}

// Fresh returns the entry for target when it makes regeneration unnecessary.
func (s Stamp) Fresh(target Target, hash, output string) (StampEntry, bool) {
	e, ok := s.Targets[string(target)]
	if !ok || e.Retry || e.SchemaHash != hash || e.Output != output {
		return StampEntry{}, false
	}
	if _, err := ParseOutcome(e.Outcome); err != nil {
		return StampEntry{}, false
	}
	if _, err := os.Stat(output); err != nil {
		return StampEntry{}, false
	}
	return e, true
}

func (s *Stamp) Record(res Result, hash, runID string, at time.Time) {
	if s.Targets == nil {
		s.Targets = map[string]StampEntry{}
	}
	s.Targets[string(res.Target)] = StampEntry{
		SchemaHash:  hash,
		Outcome:     res.Outcome.String(),
		Output:      res.Output,
		Retry:       res.Retry,
		RunID:       runID,
		GeneratedAt: at.UTC(),
	}
}

func (s Stamp) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("codegen: encode stamp: %w", err)
	}
	if _, err := writeIfChanged(path, buf.Bytes()); err != nil {
		return fmt.Errorf("codegen: write stamp: %w", err)
	}
	return nil
}
