package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/audit"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortlink"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testURL = "https://example.com/very/long/path"
	baseURL = "http://localhost:8888"
)

// noopPublish returns a publish function that always succeeds.
func noopPublish[T any]() messaging.Publish[T] {
	return func(_ *T) error { return nil }
}

// errorPublish returns a publish function that always fails.
func errorPublish[T any](err error) messaging.Publish[T] {
	return func(_ *T) error { return err }
}

// capturePublish returns a publish function recording the last event.
func capturePublish[T any](last **T) messaging.Publish[T] {
	return func(event *T) error {
		*last = event

		return nil
	}
}

func newTestService(t *testing.T, repo shortlink.Repository) *shortlink.Service {
	t.Helper()

	gen, err := shortlink.NewBase62Generator(6)
	require.NoError(t, err)

	validator, err := shortlink.NewTargetValidator(baseURL)
	require.NoError(t, err)

	return shortlink.NewService(repo, gen, validator, zap.NewNop())
}

func newTestHandler(t *testing.T, repo shortlink.Repository) *handlers.LinkHandler {
	t.Helper()

	return handlers.NewLinkHandler(
		newTestService(t, repo),
		baseURL,
		noopPublish[audit.LinkCreatedEvent](),
		noopPublish[audit.LinkUpdatedEvent](),
		noopPublish[audit.LinkDeletedEvent](),
		zap.NewNop(),
	)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var se huma.StatusError
	require.ErrorAs(t, err, &se)

	return se.GetStatus()
}

func shorten(t *testing.T, handler *handlers.LinkHandler, url string) *handlers.ShortenResponse {
	t.Helper()

	req := &handlers.ShortenRequest{}
	req.Body.URL = url

	resp, err := handler.Shorten(context.Background(), req)
	require.NoError(t, err)

	return resp
}

func TestShorten(t *testing.T) {
	t.Run("creates a short link and returns the owner token", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		resp := shorten(t, handler, testURL)

		assert.Len(t, resp.Body.Code, 6)
		assert.NotEmpty(t, resp.Body.OwnerToken)
		assert.Equal(t, baseURL+"/"+resp.Body.Code, resp.Body.URL)
	})

	t.Run("same url twice gets independent links", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		resp1 := shorten(t, handler, testURL)
		resp2 := shorten(t, handler, testURL)

		assert.NotEqual(t, resp1.Body.Code, resp2.Body.Code)
		assert.NotEqual(t, resp1.Body.OwnerToken, resp2.Body.OwnerToken)
	})

	t.Run("rejects an invalid url with 400 and the legacy error alias", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		req := &handlers.ShortenRequest{}
		req.Body.URL = "not-a-url"

		resp, err := handler.Shorten(context.Background(), req)

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

		var model *handlers.ErrorModel
		require.ErrorAs(t, err, &model)
		assert.Equal(t, "URL should start with http:// or https://", model.Detail)
		assert.Equal(t, model.Detail, model.Legacy)
		assert.Equal(t, "application/json", model.ContentType(""))
	})

	t.Run("publishes a created event with request metadata", func(t *testing.T) {
		var created *audit.LinkCreatedEvent

		handler := handlers.NewLinkHandler(
			newTestService(t, store.NewMemoryStore()),
			baseURL,
			capturePublish(&created),
			noopPublish[audit.LinkUpdatedEvent](),
			noopPublish[audit.LinkDeletedEvent](),
			zap.NewNop(),
		)

		ctx := handlers.ContextWithRequestMeta(context.Background(), handlers.RequestMeta{
			ClientIP:  "192.168.1.1",
			UserAgent: "TestAgent/1.0",
		})

		req := &handlers.ShortenRequest{}
		req.Body.URL = testURL

		resp, err := handler.Shorten(ctx, req)

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, resp.Body.Code, created.Code)
		assert.Equal(t, testURL, created.TargetURL)
		assert.Equal(t, "192.168.1.1", created.ClientIP)
		assert.Equal(t, "TestAgent/1.0", created.UserAgent)
	})

	t.Run("succeeds even when publish fails", func(t *testing.T) {
		handler := handlers.NewLinkHandler(
			newTestService(t, store.NewMemoryStore()),
			baseURL,
			errorPublish[audit.LinkCreatedEvent](errors.New("publish error")),
			noopPublish[audit.LinkUpdatedEvent](),
			noopPublish[audit.LinkDeletedEvent](),
			zap.NewNop(),
		)

		req := &handlers.ShortenRequest{}
		req.Body.URL = testURL

		resp, err := handler.Shorten(context.Background(), req)

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Body.Code)
	})
}

func TestResolve(t *testing.T) {
	t.Run("redirects with 302 and Location", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		resp, err := handler.Resolve(context.Background(), &handlers.ResolveRequest{Code: created.Body.Code})

		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.Status)
		assert.Equal(t, testURL, resp.Headers.Location)
	})

	t.Run("unknown code returns 404", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		resp, err := handler.Resolve(context.Background(), &handlers.ResolveRequest{Code: "nope42"})

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})

	t.Run("deleted link returns 410", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		_, err := handler.Delete(context.Background(), &handlers.DeleteLinkRequest{
			Code:       created.Body.Code,
			OwnerToken: created.Body.OwnerToken,
		})
		require.NoError(t, err)

		resp, err := handler.Resolve(context.Background(), &handlers.ResolveRequest{Code: created.Body.Code})

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusGone, statusOf(t, err))
	})
}

func TestUpdate(t *testing.T) {
	t.Run("updates the destination with the correct token", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		req := &handlers.UpdateLinkRequest{Code: created.Body.Code}
		req.Body.OwnerToken = created.Body.OwnerToken
		req.Body.URL = "https://example.org/new"

		resp, err := handler.Update(context.Background(), req)

		require.NoError(t, err)
		assert.Contains(t, resp.Body.Detail, created.Body.Code)
		assert.Equal(t, created.Body.URL, resp.Body.URL)

		redirect, err := handler.Resolve(context.Background(), &handlers.ResolveRequest{Code: created.Body.Code})
		require.NoError(t, err)
		assert.Equal(t, "https://example.org/new", redirect.Headers.Location)
	})

	t.Run("wrong token returns 403", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		req := &handlers.UpdateLinkRequest{Code: created.Body.Code}
		req.Body.OwnerToken = "wrong-token"
		req.Body.URL = "https://example.org/new"

		resp, err := handler.Update(context.Background(), req)

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	})

	t.Run("deleted link returns 404 even with the correct token", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		_, err := handler.Delete(context.Background(), &handlers.DeleteLinkRequest{
			Code:       created.Body.Code,
			OwnerToken: created.Body.OwnerToken,
		})
		require.NoError(t, err)

		req := &handlers.UpdateLinkRequest{Code: created.Body.Code}
		req.Body.OwnerToken = created.Body.OwnerToken
		req.Body.URL = "https://example.org/new"

		_, err = handler.Update(context.Background(), req)

		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})

	t.Run("invalid destination returns 400", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		req := &handlers.UpdateLinkRequest{Code: created.Body.Code}
		req.Body.OwnerToken = created.Body.OwnerToken
		req.Body.URL = "not-a-url"

		_, err := handler.Update(context.Background(), req)

		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})
}

func TestDelete(t *testing.T) {
	t.Run("deletes with the correct token", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		resp, err := handler.Delete(context.Background(), &handlers.DeleteLinkRequest{
			Code:       created.Body.Code,
			OwnerToken: created.Body.OwnerToken,
		})

		require.NoError(t, err)
		assert.Contains(t, resp.Body.Detail, created.Body.Code)
	})

	t.Run("deleting twice succeeds", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		req := &handlers.DeleteLinkRequest{
			Code:       created.Body.Code,
			OwnerToken: created.Body.OwnerToken,
		}

		_, err := handler.Delete(context.Background(), req)
		require.NoError(t, err)

		_, err = handler.Delete(context.Background(), req)
		require.NoError(t, err)
	})

	t.Run("missing token returns 400", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		_, err := handler.Delete(context.Background(), &handlers.DeleteLinkRequest{
			Code: created.Body.Code,
		})

		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})

	t.Run("wrong token returns 403", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		_, err := handler.Delete(context.Background(), &handlers.DeleteLinkRequest{
			Code:       created.Body.Code,
			OwnerToken: "wrong-token",
		})

		assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	})
}

func TestLegacyUpdate(t *testing.T) {
	t.Run("updates the link addressed by its token", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		req := &handlers.LegacyUpdateRequest{}
		req.Body.UUID = created.Body.OwnerToken
		req.Body.URL = "https://example.org/new"

		resp, err := handler.LegacyUpdate(context.Background(), req)

		require.NoError(t, err)
		assert.Contains(t, resp.Body.Detail, created.Body.Code)
		assert.Equal(t, created.Body.URL, resp.Body.URL)

		redirect, err := handler.Resolve(context.Background(), &handlers.ResolveRequest{Code: created.Body.Code})
		require.NoError(t, err)
		assert.Equal(t, "https://example.org/new", redirect.Headers.Location)
	})

	t.Run("unknown token returns 404", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())

		req := &handlers.LegacyUpdateRequest{}
		req.Body.UUID = "unknown-token"
		req.Body.URL = "https://example.org/new"

		resp, err := handler.LegacyUpdate(context.Background(), req)

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})
}

func TestLegacyDelete(t *testing.T) {
	t.Run("deletes with the token from the header", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		resp, err := handler.LegacyDelete(context.Background(), &handlers.LegacyDeleteRequest{
			Code:        created.Body.Code,
			HeaderToken: created.Body.OwnerToken,
		})

		require.NoError(t, err)
		assert.Contains(t, resp.Body.Detail, created.Body.Code)
	})

	t.Run("falls back to the query token", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		_, err := handler.LegacyDelete(context.Background(), &handlers.LegacyDeleteRequest{
			Code:       created.Body.Code,
			QueryToken: created.Body.OwnerToken,
		})

		require.NoError(t, err)
	})

	t.Run("header token wins over query token", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		_, err := handler.LegacyDelete(context.Background(), &handlers.LegacyDeleteRequest{
			Code:        created.Body.Code,
			HeaderToken: "wrong-token",
			QueryToken:  created.Body.OwnerToken,
		})

		assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	})

	t.Run("missing token returns 400", func(t *testing.T) {
		handler := newTestHandler(t, store.NewMemoryStore())
		created := shorten(t, handler, testURL)

		_, err := handler.LegacyDelete(context.Background(), &handlers.LegacyDeleteRequest{
			Code: created.Body.Code,
		})

		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})
}

func TestContextWithRequestMeta(t *testing.T) {
	t.Run("adds and retrieves request metadata from context", func(t *testing.T) {
		meta := handlers.RequestMeta{
			ClientIP:  "192.168.1.1",
			UserAgent: "TestAgent/1.0",
			Referrer:  "https://referrer.com",
		}
		ctx := handlers.ContextWithRequestMeta(context.Background(), meta)

		retrieved := handlers.RequestMetaFromContext(ctx)
		assert.Equal(t, meta, retrieved)
	})

	t.Run("returns zero meta for a bare context", func(t *testing.T) {
		assert.Zero(t, handlers.RequestMetaFromContext(context.Background()))
	})
}
