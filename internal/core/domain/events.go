package domain

// ChangeType identifies the kind of filesystem change observed by a watcher.
type ChangeType string

// Change event types emitted by the change watcher.
const (
	ChangeAdd    ChangeType = "add"
	ChangeModify ChangeType = "modify"
	ChangeRemove ChangeType = "remove"
)

// ChangeEvent is a single filesystem change. Events are delivered
// sequentially per path but carry no ordering guarantee across paths, so
// consumers must treat each event as "ingest or remove the current state
// of this path".
type ChangeEvent struct {
	Type ChangeType
	Path string
}
