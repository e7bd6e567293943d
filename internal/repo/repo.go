// Package repo provides repository initialisation and discovery for glossd.
//
// A glossd repository is a .glossd directory holding one or more catalogue
// databases (glossd.db, glossd-archive.db, ...) and optionally a local
// config.yaml. Discovery works like git: starting from the current directory,
// walk up until a .glossd directory containing the target database is found,
// or the filesystem root is reached.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

const (
	// Dir is the directory name for the glossd repository.
	Dir = ".glossd"
	// DBFile is the default database filename.
	DBFile = "glossd.db"
	// dbPrefix starts the filename of every named database.
	dbPrefix = "glossd-"
)

// DBFileName returns the database filename for a given name.
// Empty name returns the default "glossd.db".
// A name like "archive" returns "glossd-archive.db".
// A name already ending in ".db" is returned as-is.
func DBFileName(name string) string {
	if name == "" {
		return DBFile
	}
	if strings.HasSuffix(name, ".db") {
		return name
	}
	return dbPrefix + name + ".db"
}

// ErrNotInitialised is returned when no glossd repository is found.
var ErrNotInitialised = errors.New("glossd not initialised (run 'glossd init')")

// Init creates dir/.glossd and an empty catalogue database in it. Config is
// not written; "glossd config" manages it.
//
// Parameters:
//   - force: replace an existing database
//   - db: database name (empty for default "glossd.db")
//   - local: add the database to .gitignore so it is not committed
//   - dir: target directory (empty for current directory)
func Init(force bool, db string, local bool, dir string) error {
	if dir == "" {
		dir = "."
	}
	repoDir := filepath.Join(dir, Dir)
	dbPath := filepath.Join(repoDir, DBFileName(db))

	if _, err := os.Stat(dbPath); err == nil {
		if !force {
			return fmt.Errorf("database %s already exists (use --force to reinitialise)", DBFileName(db))
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("remove database: %w", err)
		}
	}

	if err := os.MkdirAll(repoDir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	if err := s.Init(); err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	// Written on first init only so later inits keep local database markers.
	gitignore := filepath.Join(repoDir, ".gitignore")
	if _, err := os.Stat(gitignore); os.IsNotExist(err) {
		s := `# glossd - local config is per checkout
# Catalogue databases (*.db) are shared unless marked local below
config.yaml
`
		if err := os.WriteFile(gitignore, []byte(s), 0644); err != nil {
			return fmt.Errorf("write gitignore: %w", err)
		}
	}

	if local {
		if err := IgnoreDB(db, repoDir); err != nil {
			return fmt.Errorf("ignore database: %w", err)
		}
	}

	return nil
}

// Discover walks up from the working directory to the nearest .glossd
// directory holding the named database (empty for the default) and returns
// the database path.
func Discover(db string) (string, error) {
	file := DBFileName(db)
	return walkUp(func(dir string) (string, bool) {
		p := filepath.Join(dir, Dir, file)
		_, err := os.Stat(p)
		return p, err == nil
	})
}

// DiscoverDir returns the nearest .glossd directory.
func DiscoverDir() (string, error) {
	return walkUp(func(dir string) (string, bool) {
		p := filepath.Join(dir, Dir)
		info, err := os.Stat(p)
		return p, err == nil && info.IsDir()
	})
}

// walkUp calls found for the working directory and each parent until it
// reports a match. ErrNotInitialised is returned at the filesystem root.
func walkUp(found func(dir string) (string, bool)) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		if p, ok := found(dir); ok {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInitialised
		}
		dir = parent
	}
}

// DBInfo describes one catalogue database in a .glossd directory.
type DBInfo struct {
	Name  string // "" for glossd.db, "archive" for glossd-archive.db
	File  string
	Path  string
	Local bool // listed in .gitignore
}

// ListDBs returns the databases in dir, or in the discovered .glossd
// directory when dir is empty. An unreadable .gitignore lists every
// database as shared.
func ListDBs(dir string) ([]DBInfo, error) {
	if dir == "" {
		var err error
		if dir, err = DiscoverDir(); err != nil {
			return nil, fmt.Errorf("discover %s directory: %w", Dir, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s directory: %w", Dir, err)
	}
	ignore, err := loadIgnore(dir)
	if err != nil {
		ignore = &ignoreFile{}
	}

	var dbs []DBInfo
	for _, e := range entries {
		file := e.Name()
		var name string
		switch {
		case file == DBFile:
		case strings.HasPrefix(file, dbPrefix) && strings.HasSuffix(file, ".db"):
			name = strings.TrimSuffix(strings.TrimPrefix(file, dbPrefix), ".db")
		default:
			continue
		}
		dbs = append(dbs, DBInfo{
			Name:  name,
			File:  file,
			Path:  filepath.Join(dir, file),
			Local: ignore.has(file),
		})
	}
	return dbs, nil
}
