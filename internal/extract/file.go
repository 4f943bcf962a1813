package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"gamecal/internal/game"
	"gamecal/internal/logging"
)

// FileSourceName names the local observation source.
const FileSourceName = "file"

// Observation is one game as listed in a local observation file. Platform
// keys are catalog aliases and values are release dates in any common
// layout.
type Observation struct {
	Name      string             `json:"name"`
	Aliases   []string           `json:"aliases,omitempty"`
	Developer string             `json:"developer,omitempty"`
	Publisher string             `json:"publisher,omitempty"`
	Platforms map[string]string  `json:"platforms"`
	Scores    map[string]float64 `json:"scores,omitempty"`
}

// File reads observations from local JSON files, each holding an array of
// Observation.
type File struct {
	*pageSource
	paths []string
	files map[string][]byte
}

// NewFile returns a source reading the given observation files.
func NewFile(env Env, paths ...string) *File {
	env = env.withDefaults()
	return &File{
		pageSource: newPageSource(FileSourceName, env, nil),
		paths:      slices.Clone(paths),
		files:      make(map[string][]byte),
	}
}

// Fetch reads every file.
func (f *File) Fetch(ctx context.Context) error {
	clear(f.files)
	for _, path := range f.paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%s: read %s: %w", f.name, path, err)
		}
		f.files[path] = data
	}
	return nil
}

// Extract decodes the files in the order they were given.
func (f *File) Extract() ([]*game.Record, error) {
	defer f.reportUnknown()
	var records []*game.Record
	for _, path := range f.paths {
		data, ok := f.files[path]
		if !ok {
			continue
		}
		var observations []Observation
		if err := json.Unmarshal(data, &observations); err != nil {
			return nil, fmt.Errorf("%s: decode %s: %w", f.name, path, err)
		}
		for _, obs := range observations {
			if record := f.record(obs); record != nil {
				records = append(records, record)
			}
		}
	}
	return records, nil
}

func (f *File) record(obs Observation) *game.Record {
	name := strings.TrimSpace(obs.Name)
	if name == "" {
		f.dropped("missing name", "")
		return nil
	}
	record := game.NewRecord(f.env.Seq, name)
	record.AddAlias(obs.Aliases...)
	if obs.Developer != "" {
		record.AddDeveloper(obs.Developer)
	}
	if obs.Publisher != "" {
		record.AddPublisher(obs.Publisher)
	}
	for _, key := range slices.Sorted(maps.Keys(obs.Platforms)) {
		date, ok := parseFullDate(obs.Platforms[key])
		if !ok {
			f.logger.Debug("unparseable release date",
				logging.String("title", name),
				logging.String("platform", key),
				logging.String("date", obs.Platforms[key]))
			continue
		}
		for _, p := range f.resolvePlatforms([]string{key}) {
			record.AddReleaseDate(p, date)
		}
	}
	for _, label := range slices.Sorted(maps.Keys(obs.Scores)) {
		record.AddScore(label, obs.Scores[label])
	}
	return record
}
