package shortlink

import (
	"errors"
	"time"
)

// Code represents a short link code.
type Code string

// Status is the lifecycle state of a short link.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// ShortLink represents a short code mapped to a destination URL.
type ShortLink struct {
	Code       Code
	TargetURL  string
	OwnerToken string // minted at creation, required for update/delete, never reassigned
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var (
	// ErrNotFound is returned when no link exists for the given code or token.
	ErrNotFound = errors.New("short link not found")
	// ErrGone is returned when the link existed but has been deleted.
	ErrGone = errors.New("short link deleted")
	// ErrForbidden is returned when the owner token does not match.
	ErrForbidden = errors.New("owner token mismatch")
	// ErrCodeTaken is returned by Repository.Insert when the code is already
	// in use. The service retries with a fresh code; it never reaches clients.
	ErrCodeTaken = errors.New("code already taken")
	// ErrKeyspaceExhausted is returned when the create retry budget runs out.
	ErrKeyspaceExhausted = errors.New("code keyspace exhausted")
	// ErrUnavailable wraps transient store failures that survived a retry.
	ErrUnavailable = errors.New("store unavailable")
)

// ValidationError reports an unacceptable target URL. The message is
// rendered verbatim to clients.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
