package audit

import "context"

// Recorder adapts a Store to the typed messaging handlers consumed from the
// audit topics.
type Recorder struct {
	store Store
}

// NewRecorder creates a new audit recorder.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// HandleLinkCreated persists a link created event.
func (r *Recorder) HandleLinkCreated(ctx context.Context, event *LinkCreatedEvent) error {
	return r.store.SaveLinkCreated(ctx, event)
}

// HandleLinkUpdated persists a link updated event.
func (r *Recorder) HandleLinkUpdated(ctx context.Context, event *LinkUpdatedEvent) error {
	return r.store.SaveLinkUpdated(ctx, event)
}

// HandleLinkDeleted persists a link deleted event.
func (r *Recorder) HandleLinkDeleted(ctx context.Context, event *LinkDeletedEvent) error {
	return r.store.SaveLinkDeleted(ctx, event)
}
