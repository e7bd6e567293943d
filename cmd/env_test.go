// Testing Strategy Design Decision:
//
// The cmd/ package contains CLI integration tests that exercise the full stack:
// command parsing -> extension -> glossary service -> store -> SQLite.
//
// Search semantics are unit tested in internal/query, internal/search and
// internal/store. These tests check the wiring: flags reach the service,
// errors become exit codes and output is formatted for humans and JSON.
//
// Every invocation runs with HOME pointed at a temp dir so neither the
// global config nor the audit log of the developer running the tests is
// read or written.

package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the glossd binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "glossd-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "glossd"
		if os.PathSeparator == '\\' {
			binaryName = "glossd.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		// Find project root (parent of cmd/)
		wd := mustGetwd()
		projectRoot := filepath.Dir(wd)

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t      *testing.T
	dir    string
	home   string
	binary string
}

// newBareEnv creates a temporary project directory without a catalogue.
func newBareEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{t: t, dir: t.TempDir(), home: t.TempDir(), binary: buildBinary(t)}
}

// newTestEnv creates a temporary directory with an initialised, empty
// catalogue.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newBareEnv(t)
	env.run("init")
	return env
}

// newCatalogEnv is newTestEnv with testCatalog imported.
func newCatalogEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	env.run("import", env.writeFile("catalogue.yaml", testCatalog))
	return env
}

func (e *testEnv) command(stdin string, args ...string) *exec.Cmd {
	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = append(os.Environ(),
		"HOME="+e.home,
		"GLOSSD_DB=",
		"GLOSSD_DIR=",
		"GLOSSD_CATALOG=",
	)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	return cmd
}

// run executes glossd with the given args and returns its output.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("glossd %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes glossd and returns its output and any error.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()
	out, err := e.command("", args...).CombinedOutput()
	return string(out), err
}

// runStdin executes glossd with stdin input.
func (e *testEnv) runStdin(input string, args ...string) string {
	e.t.Helper()
	out, err := e.runStdinErr(input, args...)
	if err != nil {
		e.t.Fatalf("glossd %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runStdinErr executes glossd with stdin input and returns any error.
func (e *testEnv) runStdinErr(input string, args ...string) (string, error) {
	e.t.Helper()
	out, err := e.command(input, args...).CombinedOutput()
	return string(out), err
}

// runStdout executes glossd and returns stdout only, for JSON decoding.
func (e *testEnv) runStdout(args ...string) string {
	e.t.Helper()
	out, err := e.command("", args...).Output()
	require.NoError(e.t, err, "glossd %v", args)
	return string(out)
}

// writeFile writes content under the project directory and returns its path.
func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// notContains checks that output does not contain unexpected.
func (e *testEnv) notContains(output, unexpected string) {
	e.t.Helper()
	assert.NotContains(e.t, output, unexpected)
}

// equals checks if output equals expected string (trimmed).
func (e *testEnv) equals(output, expected string) {
	e.t.Helper()
	assert.Equal(e.t, strings.TrimSpace(expected), strings.TrimSpace(output))
}

// testCatalog is a small biology course. Course 3 has no glossaries.
const testCatalog = `
courses:
  - id: 2
    short_name: BIO101
    full_name: Introductory Biology
    glossaries:
      - id: 10
        name: Key terms
        entries:
          - id: 100
            concept: Cell
            definition: The basic unit of life.
            aliases: [cellula]
          - id: 101
            concept: Cell wall
            definition: A rigid layer around plant cells.
          - id: 102
            concept: Category
            definition: A group of related things.
          - id: 103
            concept: Draft cell
            definition: Not yet approved.
            approved: false
            user_id: 7
      - id: 11
        name: Staff notes
        visible: false
        entries:
          - id: 110
            concept: Cell culture
            definition: Grown in the lab.
  - id: 3
    short_name: EMPTY
grants:
  - user_id: 5
    capability: moodle/course:viewhiddenactivities
`
