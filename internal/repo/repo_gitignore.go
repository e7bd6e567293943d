// repo_gitignore.go marks catalogue databases local (ignored by git) or
// shared by editing .glossd/.gitignore. Lines other than database entries
// and the local section header are left as they are.

package repo

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const localDBHeader = "# Local databases (not committed)"

// ignoreFile is .glossd/.gitignore held as raw lines.
type ignoreFile struct {
	path  string
	lines []string
}

func loadIgnore(dir string) (*ignoreFile, error) {
	if dir == "" {
		var err error
		if dir, err = DiscoverDir(); err != nil {
			return nil, err
		}
	}
	f := &ignoreFile{path: filepath.Join(dir, ".gitignore")}
	content, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	f.lines = strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	return f, nil
}

func (f *ignoreFile) has(line string) bool {
	return slices.ContainsFunc(f.lines, func(l string) bool {
		return strings.TrimSpace(l) == line
	})
}

func (f *ignoreFile) save() error {
	return os.WriteFile(f.path, []byte(strings.Join(f.lines, "\n")+"\n"), 0644)
}

// IgnoreDB marks a database local. An empty dir is discovered from the
// working directory.
func IgnoreDB(name, dir string) error {
	f, err := loadIgnore(dir)
	if err != nil {
		return err
	}
	db := DBFileName(name)
	if f.has(db) {
		return nil
	}
	if !f.has(localDBHeader) {
		f.lines = append(f.lines, "", localDBHeader)
	}
	f.lines = append(f.lines, db)
	return f.save()
}

// UnignoreDB marks a database shared. The local section header goes once
// no database is listed under it.
func UnignoreDB(name, dir string) error {
	f, err := loadIgnore(dir)
	if err != nil {
		return err
	}
	db := DBFileName(name)
	f.lines = slices.DeleteFunc(f.lines, func(l string) bool {
		return strings.TrimSpace(l) == db
	})

	if i := slices.Index(f.lines, localDBHeader); i != -1 {
		rest := f.lines[i+1:]
		if !slices.ContainsFunc(rest, func(l string) bool { return strings.HasSuffix(strings.TrimSpace(l), ".db") }) {
			f.lines = f.lines[:i]
			for len(f.lines) > 0 && strings.TrimSpace(f.lines[len(f.lines)-1]) == "" {
				f.lines = f.lines[:len(f.lines)-1]
			}
		}
	}
	return f.save()
}

// IsIgnored reports whether a database is marked local.
func IsIgnored(name, dir string) (bool, error) {
	f, err := loadIgnore(dir)
	if err != nil {
		return false, err
	}
	return f.has(DBFileName(name)), nil
}
