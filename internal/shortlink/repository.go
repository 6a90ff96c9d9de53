package shortlink

import (
	"context"
	"time"
)

// Repository defines the mapping store contract. Conditional writes are the
// sole serialization point for concurrent mutations on the same code.
type Repository interface {
	// Insert atomically creates the link if the code is absent.
	// Returns ErrCodeTaken when the code is already in use, deleted or not.
	Insert(ctx context.Context, link *ShortLink) error

	// GetByCode returns the link regardless of status.
	GetByCode(ctx context.Context, code Code) (*ShortLink, error)

	// GetByOwnerToken returns the active link owned by the token.
	// Deleted links are reported as ErrNotFound.
	GetByOwnerToken(ctx context.Context, ownerToken string) (*ShortLink, error)

	// UpdateTarget conditionally rewrites the destination URL.
	// Returns ErrForbidden on token mismatch (regardless of status) and
	// ErrNotFound when the code is unknown or already deleted.
	UpdateTarget(ctx context.Context, code Code, ownerToken, targetURL string, updatedAt time.Time) error

	// MarkDeleted transitions the link to deleted. Deleting an already
	// deleted link with the correct token succeeds; a wrong token always
	// returns ErrForbidden.
	MarkDeleted(ctx context.Context, code Code, ownerToken string, deletedAt time.Time) error

	// CountActive reports the number of active links, used by the keyspace
	// occupancy check.
	CountActive(ctx context.Context) (int64, error)
}
