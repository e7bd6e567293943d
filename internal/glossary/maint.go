package glossary

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// ErrInMemory is returned by maintenance operations on a catalogue served
// from a file.
var ErrInMemory = errors.New("catalogue is held in memory, there is no database to compact")

// Compaction reports the database file size around a Compact.
type Compaction struct {
	Path   string `json:"path"`
	Before int64  `json:"before"`
	After  int64  `json:"after"`
}

// Compact rebuilds the database file. A dry run only reports its size.
func (s *Service) Compact(ctx context.Context, dryRun bool) (Compaction, error) {
	c := Compaction{Path: s.path}
	sq, ok := s.store.(*store.SQLiteStore)
	if !ok || s.path == "" {
		return c, ErrInMemory
	}

	ev := log.Event("glossary:compact", "vacuum").
		User(s.cfg.User.Name, s.cfg.UserID()).
		Detail("dry_run", dryRun)

	before, err := fileSize(s.path)
	if err != nil {
		ev.Write(err)
		return c, err
	}
	c.Before, c.After = before, before
	if dryRun {
		ev.Write(nil)
		return c, nil
	}

	if err := sq.Vacuum(ctx); err != nil {
		ev.Write(err)
		return c, err
	}
	if c.After, err = fileSize(s.path); err != nil {
		ev.Write(err)
		return c, err
	}
	ev.Detail("before", c.Before).Detail("after", c.After).Write(nil)
	return c, nil
}

func fileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return fi.Size(), nil
}
