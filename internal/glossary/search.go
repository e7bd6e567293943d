package glossary

import (
	"context"
	"errors"
	"fmt"

	"github.com/stronk7/moodle-block-search-glossaries/internal/log"
	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
	"github.com/stronk7/moodle-block-search-glossaries/internal/search"
	"github.com/stronk7/moodle-block-search-glossaries/internal/service"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
	"github.com/stronk7/moodle-block-search-glossaries/internal/validate"
)

// Search cleans the query, runs it against the course and presents the
// requested page. The listing carries the cleaned query. A request without
// a user searches as the configured one.
func (s *Service) Search(ctx context.Context, req service.SearchRequest) (search.Listing, error) {
	userID := s.cfg.UserID()
	if req.UserID != nil {
		userID = *req.UserID
	}
	ev := log.Event("glossary:search", "search").
		User(s.cfg.User.Name, userID).
		Course(req.CourseID).
		Query(req.Query)

	q, err := validate.Query(req.Query, s.cfg.MaxQuery())
	if err != nil {
		ev.Write(err)
		return search.Listing{}, err
	}

	page, err := s.resolver.Search(ctx, search.Request{
		Query:    q,
		CourseID: req.CourseID,
		Offset:   search.PageOffset(req.Page),
		UserID:   userID,
	})
	if err != nil {
		ev.Write(err)
		return search.Listing{}, err
	}

	l := s.presenter.Present(q, page)
	ev.Total(l.Total).
		Detail("page", l.Page).
		Detail("permitted", len(page.Permitted)).
		Write(nil)
	return l, nil
}

// HighlightTerms returns the words of raw that results highlight.
func (s *Service) HighlightTerms(raw string) []string {
	return query.HighlightTerms(raw)
}

// Course returns a course by id.
func (s *Service) Course(ctx context.Context, id int64) (*store.Course, error) {
	return s.store.Course(ctx, id)
}

// Courses lists every course.
func (s *Service) Courses(ctx context.Context) ([]store.Course, error) {
	return s.store.Courses(ctx)
}

// Glossaries lists the glossaries of a course. An unknown course is
// reported as search.ErrInvalidCourse.
func (s *Service) Glossaries(ctx context.Context, courseID int64) ([]store.Glossary, error) {
	if _, err := s.store.Course(ctx, courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("course %d: %w", courseID, search.ErrInvalidCourse)
		}
		return nil, err
	}
	return s.store.Glossaries(ctx, courseID)
}

// Stats returns catalogue counts.
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	return s.store.Stats(ctx)
}
