package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// CourseID rejects ids that cannot name a course.
func CourseID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCourse, id)
	}
	return nil
}

// Capability checks that c is one of store.Capabilities.
func Capability(c string) error {
	if !slices.Contains(store.Capabilities(), c) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrInvalidCapability, c, strings.Join(store.Capabilities(), ", "))
	}
	return nil
}
