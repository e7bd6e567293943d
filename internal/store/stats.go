// stats.go implements aggregate counts for the stats command.

package store

import (
	"context"
	"fmt"
)

// Stats returns catalogue counts.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	counts := []struct {
		dst *int64
		q   string
	}{
		{&st.Courses, `SELECT COUNT(*) FROM courses`},
		{&st.Glossaries, `SELECT COUNT(*) FROM glossaries`},
		{&st.Hidden, `SELECT COUNT(*) FROM glossaries WHERE visible = 0`},
		{&st.Entries, `SELECT COUNT(*) FROM entries`},
		{&st.Pending, `SELECT COUNT(*) FROM entries WHERE approved = 0`},
		{&st.Shared, `SELECT COUNT(*) FROM entries WHERE source_glossary_id != 0`},
		{&st.Aliases, `SELECT COUNT(*) FROM aliases`},
		{&st.Grants, `SELECT COUNT(*) FROM grants`},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.q).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}
	return &st, nil
}
