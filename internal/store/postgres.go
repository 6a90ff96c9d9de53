package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortlink"
)

// PostgresStore is a PostgreSQL implementation of shortlink.Repository.
// Creation relies on INSERT ... ON CONFLICT DO NOTHING and mutations on
// conditional UPDATEs, so concurrent operations on the same code are
// linearized by the database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Insert(ctx context.Context, link *shortlink.ShortLink) error {
	query := `
		INSERT INTO short_links (code, target_url, owner_token, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		string(link.Code),
		link.TargetURL,
		link.OwnerToken,
		string(link.Status),
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortlink.ErrCodeTaken
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortlink.Code) (*shortlink.ShortLink, error) {
	query := `
		SELECT code, target_url, owner_token, status, created_at, updated_at
		FROM short_links
		WHERE code = $1
	`

	return p.scanLink(p.pool.QueryRow(ctx, query, string(code)))
}

func (p *PostgresStore) GetByOwnerToken(ctx context.Context, ownerToken string) (*shortlink.ShortLink, error) {
	query := `
		SELECT code, target_url, owner_token, status, created_at, updated_at
		FROM short_links
		WHERE owner_token = $1 AND status = 'active'
	`

	return p.scanLink(p.pool.QueryRow(ctx, query, ownerToken))
}

func (p *PostgresStore) UpdateTarget(ctx context.Context, code shortlink.Code, ownerToken, targetURL string, updatedAt time.Time) error {
	query := `
		UPDATE short_links
		SET target_url = $3, updated_at = $4
		WHERE code = $1 AND owner_token = $2 AND status = 'active'
	`

	tag, err := p.pool.Exec(ctx, query, string(code), ownerToken, targetURL, updatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	return p.explainMiss(ctx, code, ownerToken, false)
}

func (p *PostgresStore) MarkDeleted(ctx context.Context, code shortlink.Code, ownerToken string, deletedAt time.Time) error {
	query := `
		UPDATE short_links
		SET status = 'deleted', updated_at = $3
		WHERE code = $1 AND owner_token = $2 AND status = 'active'
	`

	tag, err := p.pool.Exec(ctx, query, string(code), ownerToken, deletedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	return p.explainMiss(ctx, code, ownerToken, true)
}

func (p *PostgresStore) CountActive(ctx context.Context) (int64, error) {
	var count int64

	err := p.pool.QueryRow(ctx,
		`SELECT count(*) FROM short_links WHERE status = 'active'`,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// explainMiss disambiguates a conditional write that touched no rows.
// A token mismatch always wins over status so a wrong token never learns
// whether the link was deleted.
func (p *PostgresStore) explainMiss(ctx context.Context, code shortlink.Code, ownerToken string, deleteOp bool) error {
	var storedToken, status string

	err := p.pool.QueryRow(ctx,
		`SELECT owner_token, status FROM short_links WHERE code = $1`,
		string(code),
	).Scan(&storedToken, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shortlink.ErrNotFound
		}

		return err
	}

	if storedToken != ownerToken {
		return shortlink.ErrForbidden
	}

	// Already deleted: deletes are idempotent, updates are not.
	if deleteOp {
		return nil
	}

	return shortlink.ErrNotFound
}

func (p *PostgresStore) scanLink(row pgx.Row) (*shortlink.ShortLink, error) {
	var link shortlink.ShortLink

	err := row.Scan(
		&link.Code,
		&link.TargetURL,
		&link.OwnerToken,
		&link.Status,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortlink.ErrNotFound
		}

		return nil, err
	}

	return &link, nil
}

// Compile-time check.
var _ shortlink.Repository = (*PostgresStore)(nil)
