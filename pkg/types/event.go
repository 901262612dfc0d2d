package types

import "time"

// EventKind classifies a filesystem change observed by the watcher
type EventKind string

const (
	EventCreated  EventKind = "created"
	EventModified EventKind = "modified"
	EventDeleted  EventKind = "deleted"
	EventRenamed  EventKind = "renamed"
)

// FileEvent is one observed filesystem change for a single path.
// Events for the same path must be applied in the order they were observed;
// events for distinct paths carry no ordering requirement.
type FileEvent struct {
	Path string
	Kind EventKind

	// OldPath is set only for renames, naming the path the file moved from
	OldPath string

	ObservedAt time.Time
}
