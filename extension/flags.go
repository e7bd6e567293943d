// flags.go defines constants for all CLI flag names.
//
// Using constants instead of string literals prevents typos and enables
// compile-time checking when flag names are used in both Flags().Type()
// definitions and GetType() calls.
//
// Naming convention: Flag<PascalCaseName> where name matches the kebab-case
// CLI flag (e.g., "dry-run" -> FlagDryRun).

package extension

// Flag name constants for CLI commands.
// These are used with cobra's Flags().Type() and GetType() methods.
const (
	// Boolean flags

	FlagDiff   = "diff"    // Show changes an import makes
	FlagDryRun = "dry-run" // Preview without making changes
	FlagLocal  = "local"   // Use local scope (gitignored)
	FlagRaw    = "raw"     // Raw output without formatting
	FlagShare  = "share"   // Mark as shared (committed)

	// String flags

	FlagCapability = "capability" // Capability filter
	FlagOlderThan  = "older-than" // Retention period, e.g. 30d

	// Integer flags

	FlagCourse   = "course"   // Course id
	FlagGlossary = "glossary" // Glossary id (0 for course-wide)
	FlagKeep     = "keep"     // Rows to keep when pruning
	FlagLimit    = "limit"    // Limit number of results
	FlagPage     = "page"     // Zero-based result page
)
