package search

import (
	"github.com/stronk7/moodle-block-search-glossaries/internal/query"
	"github.com/stronk7/moodle-block-search-glossaries/internal/store"
)

// Item is an entry together with the glossary it is listed under.
type Item struct {
	Entry    store.Entry
	Glossary store.Glossary
	Format   string // display format for this entry
}

// Listing is a Page prepared for display.
type Listing struct {
	Query  string
	Course store.Course
	Items  []Item
	Total  int
	// First and Last are the 1-based positions of the first and last item
	// across all pages, both 0 when the page is empty.
	First int
	Last  int
	// Page is the zero-based page number, Pages the number of pages.
	Page       int
	Pages      int
	PageSize   int
	Highlights []string
}

// Empty reports whether nothing matched.
func (l Listing) Empty() bool {
	return l.Total == 0
}

// Presenter builds Listings.
type Presenter struct {
	cfg Config
}

// NewPresenter returns a Presenter using cfg for display defaults.
func NewPresenter(cfg Config) *Presenter {
	return &Presenter{cfg: cfg}
}

// Present maps each entry of page to its owning glossary and derives the
// highlight terms from raw, the query the page was produced for.
func (p *Presenter) Present(raw string, page *Page) Listing {
	size := page.PageSize
	if size <= 0 {
		size = PageSize
	}

	l := Listing{
		Query:      raw,
		Course:     page.Course,
		Total:      page.Total,
		Page:       page.Offset / size,
		Pages:      (page.Total + size - 1) / size,
		PageSize:   size,
		Highlights: query.HighlightTerms(raw),
		Items:      make([]Item, 0, len(page.Entries)),
	}

	byID := make(map[int64]store.Glossary, len(page.Glossaries))
	for _, g := range page.Glossaries {
		byID[g.ID] = g
	}

	for _, e := range page.Entries {
		g := owner(e, byID)
		l.Items = append(l.Items, Item{Entry: e, Glossary: g, Format: p.format(g)})
	}

	if len(l.Items) > 0 {
		l.First = page.Offset + 1
		l.Last = page.Offset + len(l.Items)
	}
	return l
}

// owner returns the course glossary an entry is listed under. An entry
// shared into the course from elsewhere is listed under its source glossary.
func owner(e store.Entry, byID map[int64]store.Glossary) store.Glossary {
	if g, ok := byID[e.GlossaryID]; ok {
		return g
	}
	if g, ok := byID[e.SourceGlossaryID]; ok {
		return g
	}
	return store.Glossary{ID: e.GlossaryID}
}

func (p *Presenter) format(g store.Glossary) string {
	switch {
	case g.DisplayFormat != "":
		return g.DisplayFormat
	case p.cfg.Format != "":
		return p.cfg.Format
	default:
		return DefaultFormat
	}
}

// ItemJSON is the API representation of an Item.
type ItemJSON struct {
	store.EntryJSON
	Glossary string `json:"glossary"`
	Format   string `json:"format"`
}

// ListingJSON is the API representation of a Listing.
type ListingJSON struct {
	Query      string     `json:"query"`
	CourseID   int64      `json:"course_id"`
	Total      int        `json:"total"`
	First      int        `json:"first"`
	Last       int        `json:"last"`
	Page       int        `json:"page"`
	Pages      int        `json:"pages"`
	PageSize   int        `json:"page_size"`
	Highlights []string   `json:"highlights"`
	Entries    []ItemJSON `json:"entries"`
}

// ToJSON converts a Listing to its API representation.
func (l Listing) ToJSON() ListingJSON {
	j := ListingJSON{
		Query:      l.Query,
		CourseID:   l.Course.ID,
		Total:      l.Total,
		First:      l.First,
		Last:       l.Last,
		Page:       l.Page,
		Pages:      l.Pages,
		PageSize:   l.PageSize,
		Highlights: l.Highlights,
		Entries:    make([]ItemJSON, 0, len(l.Items)),
	}
	for _, it := range l.Items {
		j.Entries = append(j.Entries, ItemJSON{
			EntryJSON: it.Entry.ToJSON(true),
			Glossary:  it.Glossary.Name,
			Format:    it.Format,
		})
	}
	return j
}
