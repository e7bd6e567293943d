// memory.go implements Store in memory. It backs searches over a catalogue
// file (--catalog) without creating a database, and tests.

package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
)

// MemoryStore is a Store held entirely in memory. Safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	courses    map[int64]Course
	glossaries map[int64]Glossary
	entries    map[int64]Entry
	aliases    map[int64]Alias
	grants     map[Grant]struct{}
	next       int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		courses:    map[int64]Course{},
		glossaries: map[int64]Glossary{},
		entries:    map[int64]Entry{},
		aliases:    map[int64]Alias{},
		grants:     map[Grant]struct{}{},
	}
}

func (m *MemoryStore) Course(_ context.Context, id int64) (*Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) Courses(context.Context) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Glossaries(_ context.Context, courseID int64) ([]Glossary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Glossary
	for _, g := range m.glossaries {
		if g.CourseID == courseID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Entry(_ context.Context, id int64) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *MemoryStore) Entries(_ context.Context, glossaryID int64) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Entry
	for _, e := range m.entries {
		if e.GlossaryID == glossaryID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Aliases(_ context.Context, entryID int64) ([]Alias, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Alias
	for _, a := range m.aliases {
		if a.EntryID == entryID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Stats(context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := &Stats{
		Courses:    int64(len(m.courses)),
		Glossaries: int64(len(m.glossaries)),
		Entries:    int64(len(m.entries)),
		Aliases:    int64(len(m.aliases)),
		Grants:     int64(len(m.grants)),
	}
	for _, g := range m.glossaries {
		if !g.Visible {
			st.Hidden++
		}
	}
	for _, e := range m.entries {
		if !e.Approved {
			st.Pending++
		}
		if e.SourceGlossaryID != 0 {
			st.Shared++
		}
	}
	return st, nil
}

// inScope applies the same glossary and visibility restriction as
// scopeCondition.
func inScope(scope Scope, e Entry) bool {
	if !e.VisibleTo(scope.UserID) {
		return false
	}
	for _, id := range scope.GlossaryIDs {
		if e.BelongsTo(id) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) AliasEntryIDs(_ context.Context, scope Scope, p query.FieldPredicate) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[int64]bool{}
	var ids []int64
	for _, a := range m.aliases {
		if seen[a.EntryID] || !p.Match(a) {
			continue
		}
		e, ok := m.entries[a.EntryID]
		if !ok || !inScope(scope, e) {
			continue
		}
		seen[a.EntryID] = true
		ids = append(ids, a.EntryID)
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *MemoryStore) FindEntries(_ context.Context, scope Scope, match EntryMatch, limit, offset int) ([]Entry, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matches := match.Matcher()
	var all []Entry
	for _, e := range m.entries {
		if inScope(scope, e) && matches(e) {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return entryLess(all[i], all[j]) })

	total := len(all)
	if limit <= 0 {
		return all, total, nil
	}
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

// entryLess orders like ORDER BY glossary_id, concept COLLATE NOCASE, id.
func entryLess(a, b Entry) bool {
	if a.GlossaryID != b.GlossaryID {
		return a.GlossaryID < b.GlossaryID
	}
	if c := compareNoCase(a.Concept, b.Concept); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// compareNoCase compares bytewise after folding ASCII upper case, which is
// what SQLite's NOCASE collation does.
func compareNoCase(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ca, cb := lowerASCII(a[i]), lowerASCII(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func (m *MemoryStore) HasGrant(_ context.Context, userID int64, capability string, glossaryID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, all := m.grants[Grant{UserID: userID, Capability: capability}]
	_, one := m.grants[Grant{UserID: userID, Capability: capability, GlossaryID: glossaryID}]
	return all || one, nil
}

func (m *MemoryStore) Grants(_ context.Context, userID int64) ([]Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Grant
	for g := range m.grants {
		if userID == 0 || g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if a.Capability != b.Capability {
			return a.Capability < b.Capability
		}
		return a.GlossaryID < b.GlossaryID
	})
	return out, nil
}

// assign gives a zero id the next free one.
func (m *MemoryStore) assign(id *int64) {
	if *id == 0 {
		m.next++
		*id = m.next
	} else if *id > m.next {
		m.next = *id
	}
}

func (m *MemoryStore) PutCourse(_ context.Context, c *Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assign(&c.ID)
	m.courses[c.ID] = *c
	return nil
}

func (m *MemoryStore) PutGlossary(_ context.Context, g *Glossary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assign(&g.ID)
	m.glossaries[g.ID] = *g
	return nil
}

func (m *MemoryStore) PutEntry(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assign(&e.ID)
	m.entries[e.ID] = *e
	return nil
}

func (m *MemoryStore) PutAlias(_ context.Context, a *Alias) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assign(&a.ID)
	m.aliases[a.ID] = *a
	return nil
}

func (m *MemoryStore) SetAliases(_ context.Context, entryID int64, aliases []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.aliases {
		if a.EntryID == entryID {
			delete(m.aliases, id)
		}
	}
	for _, alias := range aliases {
		a := Alias{EntryID: entryID, Alias: alias}
		m.assign(&a.ID)
		m.aliases[a.ID] = a
	}
	return nil
}

func (m *MemoryStore) Grant(_ context.Context, g Grant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants[g] = struct{}{}
	return nil
}

func (m *MemoryStore) Revoke(_ context.Context, g Grant) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.grants[g]
	delete(m.grants, g)
	return ok, nil
}

// Batch runs fn against a copy and swaps it in only when fn succeeds.
// Readers are blocked until the batch ends.
func (m *MemoryStore) Batch(_ context.Context, fn func(w Writer) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tmp := m.clone()
	if err := fn(tmp); err != nil {
		return err
	}
	m.courses, m.glossaries, m.entries = tmp.courses, tmp.glossaries, tmp.entries
	m.aliases, m.grants, m.next = tmp.aliases, tmp.grants, tmp.next
	return nil
}

func (m *MemoryStore) clone() *MemoryStore {
	c := NewMemory()
	for k, v := range m.courses {
		c.courses[k] = v
	}
	for k, v := range m.glossaries {
		c.glossaries[k] = v
	}
	for k, v := range m.entries {
		c.entries[k] = v
	}
	for k, v := range m.aliases {
		c.aliases[k] = v
	}
	for k := range m.grants {
		c.grants[k] = struct{}{}
	}
	c.next = m.next
	return c
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Checkpoint(context.Context) error { return nil }
