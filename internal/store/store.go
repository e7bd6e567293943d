// Package store defines the glossary catalogue types and the Store interface.
// Implementations handle the actual persistence while consumers depend only
// on the interfaces, so search can run against SQLite or an in-memory
// catalogue loaded from a file.
package store

import (
	"encoding/json"

	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
)

// Capabilities checked by the permission oracle.
const (
	// CapView lets a user read a glossary and search its entries.
	CapView = "mod/glossary:view"
	// CapViewHidden lets a user see glossaries that are hidden from students.
	CapViewHidden = "moodle/course:viewhiddenactivities"
)

// Capabilities returns every capability a grant may carry.
func Capabilities() []string {
	return []string{CapView, CapViewHidden}
}

// Course is the scope of a search. Every glossary belongs to one course.
type Course struct {
	ID        int64
	ShortName string
	FullName  string
}

// Glossary is a named collection of entries within a course.
type Glossary struct {
	ID            int64
	CourseID      int64
	Name          string
	Visible       bool
	DisplayFormat string // empty means the configured default
}

// Entry is a single concept and its definition. An entry shared from
// another glossary keeps its own GlossaryID and records the glossary it
// was exported from in SourceGlossaryID (0 when not shared). It belongs to
// both.
type Entry struct {
	ID               int64
	GlossaryID       int64
	SourceGlossaryID int64
	Concept          string
	Definition       string
	Approved         bool
	UserID           int64 // author
}

// Value implements query.Record.
func (e Entry) Value(f query.Field) string {
	switch f {
	case query.FieldDefinition:
		return e.Definition
	case query.FieldConcept:
		return e.Concept
	default:
		return ""
	}
}

// BelongsTo reports whether the entry is part of glossary id.
func (e Entry) BelongsTo(id int64) bool {
	return e.GlossaryID == id || (e.SourceGlossaryID != 0 && e.SourceGlossaryID == id)
}

// VisibleTo reports whether user may see the entry. Unapproved entries are
// only visible to their author; user 0 is anonymous and owns nothing.
func (e Entry) VisibleTo(user int64) bool {
	return e.Approved || (user != 0 && e.UserID == user)
}

// Alias is an alternative name for an entry.
type Alias struct {
	ID      int64
	EntryID int64
	Alias   string
}

// Value implements query.Record.
func (a Alias) Value(f query.Field) string {
	if f == query.FieldAlias {
		return a.Alias
	}
	return ""
}

// Grant gives a user a capability on one glossary, or on every glossary
// when GlossaryID is 0.
type Grant struct {
	UserID     int64
	Capability string
	GlossaryID int64
}

// Scope restricts entry and alias lookups to the permitted glossaries and
// to entries the requesting user may see.
type Scope struct {
	GlossaryIDs []int64
	UserID      int64
}

// EntryMatch is the union an entry must satisfy to be returned: the
// concept predicate holds, or its id is in EntryIDs, or (when FullText is
// set) the definition predicate holds.
type EntryMatch struct {
	Concept    query.FieldPredicate
	Definition query.FieldPredicate
	FullText   bool
	EntryIDs   []int64
}

// Matcher returns an in-memory evaluation of m. Build it once per search:
// it indexes EntryIDs.
func (m EntryMatch) Matcher() func(Entry) bool {
	ids := make(map[int64]struct{}, len(m.EntryIDs))
	for _, id := range m.EntryIDs {
		ids[id] = struct{}{}
	}
	return func(e Entry) bool {
		if m.Concept.Match(e) {
			return true
		}
		if _, ok := ids[e.ID]; ok {
			return true
		}
		return m.FullText && m.Definition.Match(e)
	}
}

// Stats summarises catalogue contents.
type Stats struct {
	Courses    int64 `json:"courses"`
	Glossaries int64 `json:"glossaries"`
	Hidden     int64 `json:"hidden"` // glossaries not visible to students
	Entries    int64 `json:"entries"`
	Pending    int64 `json:"pending"` // entries awaiting approval
	Shared     int64 `json:"shared"`  // entries with a source glossary
	Aliases    int64 `json:"aliases"`
	Grants     int64 `json:"grants"`
}

// CourseJSON is the API representation of a Course.
type CourseJSON struct {
	ID        int64  `json:"id"`
	ShortName string `json:"short_name,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}

// ToJSON converts a Course to its API representation.
func (c *Course) ToJSON() CourseJSON {
	return CourseJSON{ID: c.ID, ShortName: c.ShortName, FullName: c.FullName}
}

// GrantJSON is the API representation of a Grant.
type GrantJSON struct {
	UserID     int64  `json:"user_id"`
	Capability string `json:"capability"`
	GlossaryID int64  `json:"glossary_id"`
}

// ToJSON converts a Grant to its API representation.
func (g Grant) ToJSON() GrantJSON {
	return GrantJSON{UserID: g.UserID, Capability: g.Capability, GlossaryID: g.GlossaryID}
}

// EntryJSON is the API representation of an Entry.
type EntryJSON struct {
	ID               int64  `json:"id"`
	GlossaryID       int64  `json:"glossary_id"`
	SourceGlossaryID int64  `json:"source_glossary_id,omitempty"`
	Concept          string `json:"concept"`
	Definition       string `json:"definition,omitempty"`
	Approved         bool   `json:"approved"`
	UserID           int64  `json:"user_id,omitempty"`
}

// ToJSON converts an Entry to its API representation. The definition
// parameter controls whether the definition text is included.
func (e *Entry) ToJSON(definition bool) EntryJSON {
	j := EntryJSON{
		ID:               e.ID,
		GlossaryID:       e.GlossaryID,
		SourceGlossaryID: e.SourceGlossaryID,
		Concept:          e.Concept,
		Approved:         e.Approved,
		UserID:           e.UserID,
	}
	if definition {
		j.Definition = e.Definition
	}
	return j
}

// GlossaryJSON is the API representation of a Glossary.
type GlossaryJSON struct {
	ID            int64  `json:"id"`
	CourseID      int64  `json:"course_id"`
	Name          string `json:"name"`
	Visible       bool   `json:"visible"`
	DisplayFormat string `json:"display_format,omitempty"`
}

// ToJSON converts a Glossary to its API representation.
func (g *Glossary) ToJSON() GlossaryJSON {
	return GlossaryJSON{
		ID:            g.ID,
		CourseID:      g.CourseID,
		Name:          g.Name,
		Visible:       g.Visible,
		DisplayFormat: g.DisplayFormat,
	}
}

// MarshalJSON encodes a value with indentation for human-readable output.
func MarshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
