// functions.go registers the SQL functions compiled predicates call.
//
// LIKE and REGEXP would each fold case and draw word boundaries slightly
// differently from the in-memory matcher, so both sides go through the
// query package helpers instead.

package store

import (
	"database/sql/driver"
	"fmt"

	"modernc.org/sqlite"

	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
)

func init() {
	sqlite.MustRegisterDeterministicScalarFunction("gl_contains", 2, containsFunc)
	sqlite.MustRegisterDeterministicScalarFunction("gl_wholeword", 2, wholeWordFunc)
}

// containsFunc implements gl_contains(value, text).
func containsFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	return match2("gl_contains", args, query.ContainsFold)
}

// wholeWordFunc implements gl_wholeword(value, word).
func wholeWordFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	return match2("gl_wholeword", args, query.HasWholeWord)
}

func match2(name string, args []driver.Value, fn func(s, sub string) bool) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s expects 2 arguments", name)
	}
	value, ok := driverValueToString(args[0])
	if !ok {
		return int64(0), nil
	}
	text, ok := driverValueToString(args[1])
	if !ok {
		return int64(0), nil
	}
	if fn(value, text) {
		return int64(1), nil
	}
	return int64(0), nil
}

func driverValueToString(v driver.Value) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	default:
		return fmt.Sprint(val), true
	}
}
