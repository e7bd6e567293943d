package glossary

import (
	"context"
	"fmt"
	"io"

	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/diff"
	"github.com/stronk7/moodle-block-search-glossaries/internal/exporter"
	"github.com/stronk7/moodle-block-search-glossaries/internal/importer"
	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
	"github.com/stronk7/moodle-block-search-glossaries/internal/progress"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
	"github.com/stronk7/moodle-block-search-glossaries/internal/validate"
)

func quietProgress() *progress.Progress {
	return progress.NewWriter(io.Discard, "", 0, false)
}

// Import writes cat in one batch and notifies extensions once it is
// committed. A dry run only counts.
func (s *Service) Import(ctx context.Context, cat *importer.Catalog, opts importer.Options) (importer.Result, error) {
	ev := log.Event("glossary:import", "import").
		User(s.cfg.User.Name, s.cfg.UserID()).
		Detail("source", opts.Source).
		Detail("dry_run", opts.DryRun)

	result, err := importer.Run(ctx, s.store, cat, opts)
	if err != nil {
		ev.Write(err)
		return result, err
	}
	ev.Total(result.Entries).
		Detail("courses", result.Courses).
		Detail("glossaries", result.Glossaries).
		Write(nil)

	if !opts.DryRun {
		s.fireEvent(extension.ImportEvent{
			Source:     opts.Source,
			Courses:    result.Courses,
			Glossaries: result.Glossaries,
			Entries:    result.Entries,
			Aliases:    result.Aliases,
			Grants:     result.Grants,
		})
	}
	return result, nil
}

// Preview compares cat with the stored entries.
func (s *Service) Preview(ctx context.Context, cat *importer.Catalog) ([]diff.Change, error) {
	return diff.Plan(ctx, s.store, cat)
}

// Export reads the catalogue out of the store.
func (s *Service) Export(ctx context.Context, opts exporter.Options) (*importer.Catalog, exporter.Result, error) {
	ev := log.Event("glossary:export", "export").
		User(s.cfg.User.Name, s.cfg.UserID())
	if opts.CourseID != 0 {
		ev.Course(opts.CourseID)
	}

	cat, result, err := exporter.Build(ctx, s.store, opts)
	if err != nil {
		ev.Write(err)
		return nil, result, err
	}
	ev.Total(result.Entries).
		Detail("courses", result.Courses).
		Detail("glossaries", result.Glossaries).
		Write(nil)
	return cat, result, nil
}

func checkGrant(g store.Grant) error {
	if g.UserID <= 0 {
		return fmt.Errorf("user id must be positive, got %d", g.UserID)
	}
	if g.GlossaryID < 0 {
		return fmt.Errorf("glossary id must not be negative, got %d", g.GlossaryID)
	}
	return validate.Capability(g.Capability)
}

// Grant gives a user a capability on one glossary, or on all of them when
// g.GlossaryID is 0.
func (s *Service) Grant(ctx context.Context, g store.Grant) error {
	ev := log.Event("glossary:grant", "grant").
		User(s.cfg.User.Name, s.cfg.UserID()).
		Detail("grantee", g.UserID).
		Detail("capability", g.Capability).
		Detail("glossary", g.GlossaryID)

	if err := checkGrant(g); err != nil {
		ev.Write(err)
		return err
	}
	if err := s.store.Grant(ctx, g); err != nil {
		ev.Write(err)
		return err
	}
	ev.Write(nil)
	s.fireEvent(extension.GrantEvent{UserID: g.UserID, Capability: g.Capability, GlossaryID: g.GlossaryID, Added: true})
	return nil
}

// Revoke removes a grant. Revoking a grant that does not exist is not an
// error; the result reports whether anything was removed.
func (s *Service) Revoke(ctx context.Context, g store.Grant) (bool, error) {
	ev := log.Event("glossary:revoke", "revoke").
		User(s.cfg.User.Name, s.cfg.UserID()).
		Detail("grantee", g.UserID).
		Detail("capability", g.Capability).
		Detail("glossary", g.GlossaryID)

	if err := checkGrant(g); err != nil {
		ev.Write(err)
		return false, err
	}
	removed, err := s.store.Revoke(ctx, g)
	if err != nil {
		ev.Write(err)
		return false, err
	}
	ev.Detail("removed", removed).Write(nil)
	if removed {
		s.fireEvent(extension.GrantEvent{UserID: g.UserID, Capability: g.Capability, GlossaryID: g.GlossaryID})
	}
	return removed, nil
}

// Grants lists the grants of a user, or every grant for user 0.
func (s *Service) Grants(ctx context.Context, userID int64) ([]store.Grant, error) {
	return s.store.Grants(ctx, userID)
}
