// Package publish writes calendar documents to the output directory.
//
// Each run writes calendar-all-months.json plus one calendar-<month>.json per
// month. Files are replaced atomically and concurrent publishers serialise on
// an advisory lock file in the output directory.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"gamecal/internal/calendar"
	"gamecal/internal/logging"
)

const (
	// AllMonthsFile holds the whole calendar.
	AllMonthsFile = "calendar-all-months.json"
	lockFileName  = ".gamecal.lock"
	lockRetry     = 100 * time.Millisecond
)

// ErrLocked reports that another publisher holds the output lock.
var ErrLocked = errors.New("output directory is locked by another run")

// MonthFile returns the file name of month index, e.g. calendar-september.json.
func MonthFile(index int) string {
	return fmt.Sprintf("calendar-%s.json", strings.ToLower(time.Month(index+1).String()))
}

// Publisher writes calendar documents under a directory.
type Publisher struct {
	dir    string
	lock   *flock.Flock
	logger *slog.Logger
}

// New returns a Publisher writing into dir.
func New(dir string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Publisher{
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, lockFileName)),
		logger: logging.NewComponentLogger(logger, "publish"),
	}
}

// Dir returns the output directory.
func (p *Publisher) Dir() string { return p.dir }

// Publish writes the all-months document and the twelve month documents,
// all stamped with now, and returns the written paths.
func (p *Publisher) Publish(ctx context.Context, cal *calendar.Calendar, now time.Time) ([]string, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	locked, err := p.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	defer func() {
		if err := p.lock.Unlock(); err != nil {
			p.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	doc := cal.Document(now)
	written := make([]string, 0, len(doc.Months)+1)

	path := filepath.Join(p.dir, AllMonthsFile)
	if err := writeJSON(path, doc); err != nil {
		return written, err
	}
	written = append(written, path)

	for _, month := range doc.Months {
		path := filepath.Join(p.dir, MonthFile(month.Index))
		if err := writeJSON(path, month); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	p.logger.Info("calendar published",
		logging.String(logging.FieldEventType, "calendar_published"),
		logging.String("dir", p.dir),
		logging.Int("files", len(written)),
		logging.Int("entries", cal.Len()))
	return written, nil
}

// LoadMonth reads a published month document.
func LoadMonth(dir string, index int) (calendar.MonthDocument, error) {
	if index < 0 || index >= calendar.MonthCount {
		return calendar.MonthDocument{}, fmt.Errorf("month %d: %w", index, calendar.ErrMonthIndex)
	}
	var doc calendar.MonthDocument
	if err := readJSON(filepath.Join(dir, MonthFile(index)), &doc); err != nil {
		return calendar.MonthDocument{}, err
	}
	return doc, nil
}

// LoadAll reads the published all-months document.
func LoadAll(dir string) (calendar.Document, error) {
	var doc calendar.Document
	if err := readJSON(filepath.Join(dir, AllMonthsFile), &doc); err != nil {
		return calendar.Document{}, err
	}
	return doc, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	return writeFileAtomic(path, data, 0o644)
}

func readJSON(path string, value any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".calendar-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
