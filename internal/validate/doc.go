// Package validate checks user input at the CLI and MCP boundary before it
// reaches the search core or the catalogue.
//
// Query cleans a raw search string the way the search form did: markup is
// stripped, surrounding space trimmed and the length capped. CourseID and
// Capability check the arguments of catalogue commands.
//
// All validation errors wrap one of the sentinel errors defined in errors.go.
// Use errors.Is() to check them:
//
//	if errors.Is(err, validate.ErrQueryTooLong) {
//	    // tell the user to shorten the query
//	}
package validate
