package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortlink"
)

// RedisCacheRepository wraps a Repository with Redis caching for the
// resolution hot path. Reads of GetByCode are served from cache when
// possible; mutations pass through and invalidate the cached entry, keeping
// the underlying store's conditional writes as the single source of truth.
//
// Owner tokens are deliberately never cached: every token check runs
// against the durable store.
type RedisCacheRepository struct {
	store  shortlink.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(store shortlink.Repository, client *redis.Client, ttl time.Duration) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "link:",
		ttl:    ttl,
	}
}

// Insert stores the link and warms the cache on success.
func (r *RedisCacheRepository) Insert(ctx context.Context, link *shortlink.ShortLink) error {
	if err := r.store.Insert(ctx, link); err != nil {
		return err
	}

	r.cacheLink(ctx, link)

	return nil
}

// GetByCode retrieves a link by its code, checking the cache first.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortlink.Code) (*shortlink.ShortLink, error) {
	if link, err := r.getFromCache(ctx, code); err == nil {
		return link, nil
	}

	link, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

// GetByOwnerToken always hits the underlying store.
func (r *RedisCacheRepository) GetByOwnerToken(ctx context.Context, ownerToken string) (*shortlink.ShortLink, error) {
	return r.store.GetByOwnerToken(ctx, ownerToken)
}

// UpdateTarget passes through and invalidates the cached entry on success.
func (r *RedisCacheRepository) UpdateTarget(ctx context.Context, code shortlink.Code, ownerToken, targetURL string, updatedAt time.Time) error {
	if err := r.store.UpdateTarget(ctx, code, ownerToken, targetURL, updatedAt); err != nil {
		return err
	}

	r.invalidate(ctx, code)

	return nil
}

// MarkDeleted passes through and invalidates the cached entry on success.
func (r *RedisCacheRepository) MarkDeleted(ctx context.Context, code shortlink.Code, ownerToken string, deletedAt time.Time) error {
	if err := r.store.MarkDeleted(ctx, code, ownerToken, deletedAt); err != nil {
		return err
	}

	r.invalidate(ctx, code)

	return nil
}

// CountActive always hits the underlying store.
func (r *RedisCacheRepository) CountActive(ctx context.Context) (int64, error) {
	return r.store.CountActive(ctx)
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortlink.Code) (*shortlink.ShortLink, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortlink.ErrNotFound
	}

	link := &shortlink.ShortLink{
		Code:      code,
		TargetURL: result["target_url"],
		Status:    shortlink.Status(result["status"]),
	}

	if nanos, err := strconv.ParseInt(result["created_at"], 10, 64); err == nil {
		link.CreatedAt = time.Unix(0, nanos).UTC()
	}

	if nanos, err := strconv.ParseInt(result["updated_at"], 10, 64); err == nil {
		link.UpdatedAt = time.Unix(0, nanos).UTC()
	}

	return link, nil
}

func (r *RedisCacheRepository) cacheLink(ctx context.Context, link *shortlink.ShortLink) {
	key := r.prefix + string(link.Code)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"target_url": link.TargetURL,
		"status":     string(link.Status),
		"created_at": link.CreatedAt.UnixNano(),
		"updated_at": link.UpdatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

func (r *RedisCacheRepository) invalidate(ctx context.Context, code shortlink.Code) {
	_ = r.client.Del(ctx, r.prefix+string(code)).Err()
}

// Compile-time check.
var _ shortlink.Repository = (*RedisCacheRepository)(nil)
