// courses.go implements the read-only catalogue listings: courses,
// glossaries and stats.

package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/cmd"
	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/format"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

func (e *Extension) newCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List courses",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			courses, err := e.svc.Courses(c.Context())
			if err != nil {
				return cmd.PrintJSONError(fmt.Errorf("list courses: %w", err))
			}
			if cmd.JSON() {
				out := make([]store.CourseJSON, len(courses))
				for i := range courses {
					out[i] = courses[i].ToJSON()
				}
				return cmd.PrintJSON(out)
			}
			if len(courses) == 0 {
				fmt.Fprintln(cmd.Out(), "No courses")
				return nil
			}
			for _, co := range courses {
				fmt.Fprintf(cmd.Out(), "%-6d  %-12s  %s\n", co.ID, co.ShortName, co.FullName)
			}
			return nil
		},
	}
}

func (e *Extension) newGlossariesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "glossaries",
		Short: "List the glossaries of a course",
		Long: `List every glossary of a course, hidden ones included.

  glossd glossaries --course 2`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			courseID, _ := c.Flags().GetInt64(extension.FlagCourse)
			gs, err := e.svc.Glossaries(c.Context(), courseID)
			if err != nil {
				return cmd.PrintJSONError(fmt.Errorf("list glossaries: %w", err))
			}
			if cmd.JSON() {
				out := make([]store.GlossaryJSON, len(gs))
				for i := range gs {
					out[i] = gs[i].ToJSON()
				}
				return cmd.PrintJSON(out)
			}
			if len(gs) == 0 {
				fmt.Fprintln(cmd.Out(), "There are no glossaries in this course")
				return nil
			}
			return format.Glossaries(cmd.Out(), gs)
		},
	}
	c.Flags().Int64P(extension.FlagCourse, "c", 0, "Course id (required)")
	_ = c.MarkFlagRequired(extension.FlagCourse)
	return c
}

func (e *Extension) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count catalogue records",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			st, err := e.svc.Stats(c.Context())
			if err != nil {
				return cmd.PrintJSONError(fmt.Errorf("stats: %w", err))
			}
			if cmd.JSON() {
				return cmd.PrintJSON(st)
			}
			return format.Stats(cmd.Out(), st)
		},
	}
}
