package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

func TestQuery(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"  +cell -plant  ", "+cell -plant"},
		{"<b>mitosis</b>", "mitosis"},
		{"<script>x</script>cell", "cell"},
		{"AT&T", "AT&T"},
		{"", ""},
		{"cell  wall", "cell  wall"},
	}
	for _, tt := range tests {
		got, err := Query(tt.raw, 255)
		require.NoError(t, err, "Query(%q)", tt.raw)
		assert.Equal(t, tt.want, got, "Query(%q)", tt.raw)
	}
}

func TestQuery_Limits(t *testing.T) {
	_, err := Query("a\x00b", 0)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = Query(strings.Repeat("x", 256), 255)
	assert.ErrorIs(t, err, ErrQueryTooLong)

	// Characters, not bytes.
	_, err = Query(strings.Repeat("é", 255), 255)
	assert.NoError(t, err)

	_, err = Query(strings.Repeat("x", 1000), 0)
	assert.NoError(t, err)
}

func TestCourseID(t *testing.T) {
	assert.NoError(t, CourseID(1))
	assert.ErrorIs(t, CourseID(0), ErrInvalidCourse)
	assert.ErrorIs(t, CourseID(-3), ErrInvalidCourse)
}

func TestCapability(t *testing.T) {
	assert.NoError(t, Capability(store.CapView))
	assert.NoError(t, Capability(store.CapViewHidden))
	assert.ErrorIs(t, Capability("mod/glossary:write"), ErrInvalidCapability)
}
