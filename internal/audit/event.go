// Package audit defines the mutation audit trail: every create, update and
// delete of a short link is published as an event and persisted by a sink.
// Deletion being a status transition rather than a row removal exists
// precisely so this trail stays complete.
package audit

import "time"

// Topics for the audit event stream.
const (
	TopicLinkCreated = "shortlink.link_created"
	TopicLinkUpdated = "shortlink.link_updated"
	TopicLinkDeleted = "shortlink.link_deleted"
)

// LinkCreatedEvent is emitted when a short link is created.
type LinkCreatedEvent struct {
	Code      string    `json:"code"`
	TargetURL string    `json:"targetUrl"`
	CreatedAt time.Time `json:"createdAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}

// LinkUpdatedEvent is emitted when a link's destination changes.
type LinkUpdatedEvent struct {
	Code      string    `json:"code"`
	TargetURL string    `json:"targetUrl"`
	UpdatedAt time.Time `json:"updatedAt"`
	ClientIP  string    `json:"clientIp"`
}

// LinkDeletedEvent is emitted when a link is marked deleted.
type LinkDeletedEvent struct {
	Code      string    `json:"code"`
	DeletedAt time.Time `json:"deletedAt"`
	ClientIP  string    `json:"clientIp"`
}
