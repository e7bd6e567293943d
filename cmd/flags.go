/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// flags.go defines the persistent flags and the accessors extensions use
// to read them.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/internal/config"
)

var validOutputFormats = []string{"json"}

var (
	output   string
	user     int64
	userName string
	force    bool
	db       string
	dir      string
	catalog  string
)

// out is the output writer for commands. Defaults to os.Stdout.
// Tests can replace this to capture output.
var out io.Writer = os.Stdout

// Exported accessors for extensions.
// Extensions use these to access shared CLI state.

// Out returns the output writer.
func Out() io.Writer { return out }

// Output returns the output format flag value.
func Output() string { return output }

// UserID returns the --user flag value, or nil when the flag was not given
// and the configured user applies.
func UserID() *int64 {
	if !rootCmd.PersistentFlags().Changed("user") {
		return nil
	}
	id := user
	return &id
}

// UserName returns the configured user name, for audit logging.
func UserName() string { return userName }

// LogUser returns the name and id recorded in the audit log for the
// current invocation.
func LogUser() (string, int64) {
	if id := UserID(); id != nil {
		return userName, *id
	}
	return userName, configuredUserID
}

// Catalog returns the catalogue file to serve from memory instead of a
// database. Priority: --catalog flag > GLOSSD_CATALOG env var > empty.
func Catalog() string {
	if catalog != "" {
		return catalog
	}
	return os.Getenv("GLOSSD_CATALOG")
}

// Force returns the force flag value.
func Force() bool { return force }

// DB returns the resolved database name.
// Priority: --db flag > GLOSSD_DB env var > empty (default).
func DB() string {
	if db != "" {
		return db
	}
	return os.Getenv("GLOSSD_DB")
}

// Dir returns the explicit database directory if set.
// Priority: --dir flag > GLOSSD_DIR env var > empty (use discovery).
func Dir() string {
	if dir != "" {
		return dir
	}
	return os.Getenv("GLOSSD_DIR")
}

// SetOut sets the output writer (for testing).
func SetOut(w io.Writer) { out = w }

// JSON returns true if JSON output is requested.
func JSON() bool { return output == "json" }

// PrintJSON marshals v to JSON and writes it to the output writer.
// Returns nil if output format is not JSON.
func PrintJSON(v any) error {
	if output != "json" {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// PrintJSONError prints an error in JSON format if output is JSON.
// Returns nil if error was printed (suppressing Cobra error), or the original error if not.
func PrintJSONError(err error) error {
	if output != "json" || err == nil {
		return err
	}
	// We ignore the error from PrintJSON here because if we can't print the error,
	// checking it is futile. We just return nil to suppress Cobra's duplicate printing.
	_ = PrintJSON(map[string]string{"error": err.Error()})
	return nil
}

// configuredUserID is the user.id the config names, read with the name.
var configuredUserID int64

// detectUser loads the configured user for audit logging. Missing or
// unreadable config leaves the user anonymous.
func detectUser() {
	if cfg, err := config.Load(); err == nil {
		userName = cfg.User.Name
		configuredUserID = cfg.UserID()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format: json")
	rootCmd.PersistentFlags().Int64VarP(&user, "user", "u", 0, "Act as this user id (0 is anonymous; default: user.id from config)")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "Skip confirmations")
	rootCmd.PersistentFlags().StringVar(&db, "db", "", "Database name (e.g., archive for glossd-archive.db)")
	rootCmd.PersistentFlags().StringVar(&dir, "dir", "", "Target directory for init and db")
	rootCmd.PersistentFlags().StringVar(&catalog, "catalog", "", "Search a YAML/JSON catalogue file in memory instead of a database")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return validOutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
}
