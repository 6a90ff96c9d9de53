package handlers_test

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/shortlink/internal/shortlink"
)

var errMock = errors.New("mock error")

// brokenRepo is a test double whose every operation fails with the
// configured error.
type brokenRepo struct {
	err error
}

func (b *brokenRepo) Insert(_ context.Context, _ *shortlink.ShortLink) error {
	return b.err
}

func (b *brokenRepo) GetByCode(_ context.Context, _ shortlink.Code) (*shortlink.ShortLink, error) {
	return nil, b.err
}

func (b *brokenRepo) GetByOwnerToken(_ context.Context, _ string) (*shortlink.ShortLink, error) {
	return nil, b.err
}

func (b *brokenRepo) UpdateTarget(_ context.Context, _ shortlink.Code, _, _ string, _ time.Time) error {
	return b.err
}

func (b *brokenRepo) MarkDeleted(_ context.Context, _ shortlink.Code, _ string, _ time.Time) error {
	return b.err
}

func (b *brokenRepo) CountActive(_ context.Context) (int64, error) {
	return 0, b.err
}
