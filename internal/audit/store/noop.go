package store

import (
	"context"

	"github.com/serroba/shortlink/internal/audit"
	"go.uber.org/zap"
)

// Noop is an audit.Store that only logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new logging-only audit store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveLinkCreated(_ context.Context, event *audit.LinkCreatedEvent) error {
	n.logger.Info("link created",
		zap.String("code", event.Code),
		zap.String("targetUrl", event.TargetURL),
		zap.Time("createdAt", event.CreatedAt),
		zap.String("clientIp", event.ClientIP),
	)

	return nil
}

func (n *Noop) SaveLinkUpdated(_ context.Context, event *audit.LinkUpdatedEvent) error {
	n.logger.Info("link updated",
		zap.String("code", event.Code),
		zap.String("targetUrl", event.TargetURL),
		zap.Time("updatedAt", event.UpdatedAt),
		zap.String("clientIp", event.ClientIP),
	)

	return nil
}

func (n *Noop) SaveLinkDeleted(_ context.Context, event *audit.LinkDeletedEvent) error {
	n.logger.Info("link deleted",
		zap.String("code", event.Code),
		zap.Time("deletedAt", event.DeletedAt),
		zap.String("clientIp", event.ClientIP),
	)

	return nil
}

// Compile-time check.
var _ audit.Store = (*Noop)(nil)
