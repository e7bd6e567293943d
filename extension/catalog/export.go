// export.go implements "glossd export".

package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stronk7/moodle-block-search-glossaries/cmd"
	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/exporter"
)

func (e *Extension) newExportCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the catalogue to a YAML or JSON file",
		Long: `Write courses, glossaries, entries and grants in the form "glossd import"
reads. A .json file is written as JSON, anything else as YAML. Use - for
standard output.

  glossd export backup.yaml
  glossd export bio.json --course 2     # one course and its grants
  glossd export - | less`,
		Args: cobra.ExactArgs(1),
		RunE: e.runExport,
	}
	c.Flags().Int64P(extension.FlagCourse, "c", 0, "Export only this course")
	return c
}

func (e *Extension) runExport(c *cobra.Command, args []string) error {
	dst := args[0]
	courseID, _ := c.Flags().GetInt64(extension.FlagCourse)

	cat, result, err := e.svc.Export(c.Context(), exporter.Options{CourseID: courseID})
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	if dst == "-" {
		format := exporter.YAML
		if cmd.JSON() {
			format = exporter.JSON
		}
		return exporter.Encode(cmd.Out(), cat, format)
	}

	if err := exporter.WriteFile(dst, cat, cmd.Force()); err != nil {
		return cmd.PrintJSONError(err)
	}

	if cmd.JSON() {
		return cmd.PrintJSON(map[string]any{
			"path":       dst,
			"courses":    result.Courses,
			"glossaries": result.Glossaries,
			"entries":    result.Entries,
			"aliases":    result.Aliases,
			"grants":     result.Grants,
		})
	}
	fmt.Fprintf(cmd.Out(), "Exported %d course(s), %d glossary(ies), %d entry(ies), %d alias(es), %d grant(s) to %s\n",
		result.Courses, result.Glossaries, result.Entries, result.Aliases, result.Grants, dst)
	return nil
}
