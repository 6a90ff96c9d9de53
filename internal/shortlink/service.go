package shortlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// maxCreateAttempts bounds code-collision retries per create.
	maxCreateAttempts = 5
	// transientRetryDelay is waited before the single retry of a transient
	// store failure.
	transientRetryDelay = 100 * time.Millisecond
)

// Service implements short link creation, resolution and mutation on top of
// a Repository. It is safe for concurrent use.
type Service struct {
	repo      Repository
	generator CodeGenerator
	validator *TargetValidator
	logger    *zap.Logger
}

// NewService creates a new short link service.
func NewService(repo Repository, generator CodeGenerator, validator *TargetValidator, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		generator: generator,
		validator: validator,
		logger:    logger,
	}
}

// Create validates the target, mints a code and an owner token, and inserts
// the link. Code collisions are retried with a fresh draw; when the retry
// budget runs out the keyspace is considered exhausted and nothing is
// persisted.
func (s *Service) Create(ctx context.Context, targetURL string) (*ShortLink, error) {
	if err := s.validator.Validate(targetURL); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		now := time.Now().UTC()
		link := &ShortLink{
			Code:       Code(s.generator.Generate()),
			TargetURL:  targetURL,
			OwnerToken: uuid.NewString(),
			Status:     StatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		err := s.withRetry(ctx, func() error {
			return s.repo.Insert(ctx, link)
		})
		if errors.Is(err, ErrCodeTaken) {
			s.logger.Warn("code collision, retrying",
				zap.String("code", string(link.Code)),
				zap.Int("attempt", attempt),
			)

			continue
		}

		if err != nil {
			return nil, err
		}

		return link, nil
	}

	return nil, fmt.Errorf("%w: %d collisions at length %d",
		ErrKeyspaceExhausted, maxCreateAttempts, s.generator.Length())
}

// Resolve translates a code to its destination URL. Deleted links return
// ErrGone so callers can distinguish removal from absence. No token required.
func (s *Service) Resolve(ctx context.Context, code Code) (string, error) {
	var link *ShortLink

	err := s.withRetry(ctx, func() error {
		var err error
		link, err = s.repo.GetByCode(ctx, code)

		return err
	})
	if err != nil {
		return "", err
	}

	if link.Status == StatusDeleted {
		return "", ErrGone
	}

	return link.TargetURL, nil
}

// Update rewrites the destination of an active link. The new target is
// validated exactly like on create.
func (s *Service) Update(ctx context.Context, code Code, ownerToken, targetURL string) error {
	if err := s.validator.Validate(targetURL); err != nil {
		return err
	}

	return s.withRetry(ctx, func() error {
		return s.repo.UpdateTarget(ctx, code, ownerToken, targetURL, time.Now().UTC())
	})
}

// UpdateByToken serves the legacy wire contract where the link is addressed
// by its owner token alone. Possession of the token is the ownership proof;
// an unknown token reads as not found rather than forbidden.
func (s *Service) UpdateByToken(ctx context.Context, ownerToken, targetURL string) (*ShortLink, error) {
	if err := s.validator.Validate(targetURL); err != nil {
		return nil, err
	}

	var link *ShortLink

	err := s.withRetry(ctx, func() error {
		var err error
		link, err = s.repo.GetByOwnerToken(ctx, ownerToken)

		return err
	})
	if err != nil {
		return nil, err
	}

	err = s.withRetry(ctx, func() error {
		return s.repo.UpdateTarget(ctx, link.Code, ownerToken, targetURL, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	link.TargetURL = targetURL

	return link, nil
}

// Delete transitions the link to deleted. Re-deleting with the correct
// token succeeds so client retries are harmless; a wrong token always fails.
func (s *Service) Delete(ctx context.Context, code Code, ownerToken string) error {
	return s.withRetry(ctx, func() error {
		return s.repo.MarkDeleted(ctx, code, ownerToken, time.Now().UTC())
	})
}

// withRetry runs fn and retries it once after a short delay when it fails
// with anything other than a domain error, then wraps the failure in
// ErrUnavailable.
func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || isDomainError(err) {
		return err
	}

	s.logger.Warn("transient store error, retrying", zap.Error(err))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(transientRetryDelay):
	}

	err = fn()
	if err == nil || isDomainError(err) {
		return err
	}

	return fmt.Errorf("%w: %s", ErrUnavailable, err)
}

func isDomainError(err error) bool {
	var ve *ValidationError

	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrGone) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrCodeTaken) ||
		errors.As(err, &ve)
}
