// events.go defines the notifications sent to extensions after catalogue
// changes. Handlers observe; they cannot veto an operation.

package extension

// EventType identifies the kind of event.
type EventType string

const (
	EventCatalogImport EventType = "catalog:import"
	EventGrantAdd      EventType = "grant:add"
	EventGrantRemove   EventType = "grant:remove"
)

// Event is the base interface for all events.
type Event interface {
	EventType() EventType
}

// ImportEvent is fired after a catalogue import is committed.
type ImportEvent struct {
	Source     string // file name, or "" when unknown
	Courses    int
	Glossaries int
	Entries    int
	Aliases    int
	Grants     int
}

func (e ImportEvent) EventType() EventType { return EventCatalogImport }

// GrantEvent is fired after a grant is added or removed.
type GrantEvent struct {
	UserID     int64
	Capability string
	GlossaryID int64
	Added      bool // true=granted, false=revoked
}

func (e GrantEvent) EventType() EventType {
	if e.Added {
		return EventGrantAdd
	}
	return EventGrantRemove
}

// EventHandler is implemented by extensions that want to receive events.
type EventHandler interface {
	HandleEvent(ctx Context, e Event) error
}
