// grants.go implements capability grants and the permission oracle built on
// them.

package store

import (
	"context"
	"fmt"
)

// HasGrant reports whether user holds capability on glossary.
func (s *SQLiteStore) HasGrant(ctx context.Context, userID int64, capability string, glossaryID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM grants WHERE user_id = ? AND capability = ? AND glossary_id IN (0, ?)`,
		userID, capability, glossaryID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check grant: %w", err)
	}
	return n > 0, nil
}

// Grants lists the grants of a user, or every grant for user 0.
func (s *SQLiteStore) Grants(ctx context.Context, userID int64) ([]Grant, error) {
	q := `SELECT user_id, capability, glossary_id FROM grants`
	var args []any
	if userID != 0 {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY user_id, capability, glossary_id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.UserID, &g.Capability, &g.GlossaryID); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (w sqlWriter) Grant(ctx context.Context, g Grant) error {
	_, err := w.ex.ExecContext(ctx,
		`INSERT OR IGNORE INTO grants (user_id, capability, glossary_id) VALUES (?, ?, ?)`,
		g.UserID, g.Capability, g.GlossaryID)
	if err != nil {
		return fmt.Errorf("grant %s: %w", g.Capability, err)
	}
	return nil
}

func (w sqlWriter) Revoke(ctx context.Context, g Grant) (bool, error) {
	res, err := w.ex.ExecContext(ctx,
		`DELETE FROM grants WHERE user_id = ? AND capability = ? AND glossary_id = ?`,
		g.UserID, g.Capability, g.GlossaryID)
	if err != nil {
		return false, fmt.Errorf("revoke %s: %w", g.Capability, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Oracle answers the two permission questions a search asks, from grants
// held in Source. With Open set every user may view every glossary, while
// hidden glossaries still need an explicit grant.
type Oracle struct {
	Open   bool
	Source Granter
}

// CanViewContainer reports whether user may view glossary.
func (o Oracle) CanViewContainer(ctx context.Context, glossaryID, userID int64) (bool, error) {
	if o.Open {
		return true, nil
	}
	return o.Source.HasGrant(ctx, userID, CapView, glossaryID)
}

// CanViewHidden reports whether user may see glossary while it is hidden.
func (o Oracle) CanViewHidden(ctx context.Context, glossaryID, userID int64) (bool, error) {
	return o.Source.HasGrant(ctx, userID, CapViewHidden, glossaryID)
}
