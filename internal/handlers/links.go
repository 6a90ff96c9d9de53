package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/audit"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortlink"
	"go.uber.org/zap"
)

// LinkHandler handles short link operations.
type LinkHandler struct {
	service        *shortlink.Service
	baseURL        string
	publishCreated messaging.Publish[audit.LinkCreatedEvent]
	publishUpdated messaging.Publish[audit.LinkUpdatedEvent]
	publishDeleted messaging.Publish[audit.LinkDeletedEvent]
	logger         *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	service *shortlink.Service,
	baseURL string,
	publishCreated messaging.Publish[audit.LinkCreatedEvent],
	publishUpdated messaging.Publish[audit.LinkUpdatedEvent],
	publishDeleted messaging.Publish[audit.LinkDeletedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		service:        service,
		baseURL:        baseURL,
		publishCreated: publishCreated,
		publishUpdated: publishUpdated,
		publishDeleted: publishDeleted,
		logger:         logger,
	}
}

func (h *LinkHandler) shortURL(code shortlink.Code) string {
	return fmt.Sprintf("%s/%s", h.baseURL, code)
}

// Shorten creates a short link and returns the owner token, once.
func (h *LinkHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	link, err := h.service.Create(ctx, req.Body.URL)
	if err != nil {
		return nil, mapError(err)
	}

	meta := RequestMetaFromContext(ctx)

	if err := h.publishCreated(&audit.LinkCreatedEvent{
		Code:      string(link.Code),
		TargetURL: link.TargetURL,
		CreatedAt: link.CreatedAt,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}); err != nil {
		h.logger.Error("failed to publish audit event",
			zap.String("code", string(link.Code)),
			zap.Error(err),
		)
	}

	resp := &ShortenResponse{}
	resp.Body.URL = h.shortURL(link.Code)
	resp.Body.Code = string(link.Code)
	resp.Body.OwnerToken = link.OwnerToken

	return resp, nil
}

// Resolve redirects a short code to its destination URL.
func (h *LinkHandler) Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	target, err := h.service.Resolve(ctx, shortlink.Code(req.Code))
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ResolveResponse{
		Status: http.StatusFound,
	}
	resp.Headers.Location = target

	return resp, nil
}

// Update rewrites a link's destination, authorized by the owner token.
func (h *LinkHandler) Update(ctx context.Context, req *UpdateLinkRequest) (*UpdateLinkResponse, error) {
	code := shortlink.Code(req.Code)

	if err := h.service.Update(ctx, code, req.Body.OwnerToken, req.Body.URL); err != nil {
		return nil, mapError(err)
	}

	h.auditUpdated(ctx, code, req.Body.URL)

	return updateResponse(code, h.shortURL(code)), nil
}

// Delete marks a link deleted, authorized by the owner token.
func (h *LinkHandler) Delete(ctx context.Context, req *DeleteLinkRequest) (*DeleteLinkResponse, error) {
	if req.OwnerToken == "" {
		return nil, huma.Error400BadRequest("owner token is required")
	}

	return h.delete(ctx, shortlink.Code(req.Code), req.OwnerToken)
}

// LegacyUpdate serves the old client's POST /update contract, addressing
// the link by owner token alone.
func (h *LinkHandler) LegacyUpdate(ctx context.Context, req *LegacyUpdateRequest) (*UpdateLinkResponse, error) {
	link, err := h.service.UpdateByToken(ctx, req.Body.UUID, req.Body.URL)
	if err != nil {
		return nil, mapError(err)
	}

	h.auditUpdated(ctx, link.Code, link.TargetURL)

	return updateResponse(link.Code, h.shortURL(link.Code)), nil
}

// LegacyDelete serves the old client's GET /delete/{code} contract.
func (h *LinkHandler) LegacyDelete(ctx context.Context, req *LegacyDeleteRequest) (*DeleteLinkResponse, error) {
	token := req.HeaderToken
	if token == "" {
		token = req.QueryToken
	}

	if token == "" {
		return nil, huma.Error400BadRequest("owner token is required")
	}

	return h.delete(ctx, shortlink.Code(req.Code), token)
}

func (h *LinkHandler) delete(ctx context.Context, code shortlink.Code, token string) (*DeleteLinkResponse, error) {
	if err := h.service.Delete(ctx, code, token); err != nil {
		return nil, mapError(err)
	}

	meta := RequestMetaFromContext(ctx)

	if err := h.publishDeleted(&audit.LinkDeletedEvent{
		Code:      string(code),
		DeletedAt: time.Now().UTC(),
		ClientIP:  meta.ClientIP,
	}); err != nil {
		h.logger.Error("failed to publish audit event",
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}

	resp := &DeleteLinkResponse{}
	resp.Body.Detail = fmt.Sprintf("URL with ID '%s' deleted", code)

	return resp, nil
}

func (h *LinkHandler) auditUpdated(ctx context.Context, code shortlink.Code, targetURL string) {
	meta := RequestMetaFromContext(ctx)

	if err := h.publishUpdated(&audit.LinkUpdatedEvent{
		Code:      string(code),
		TargetURL: targetURL,
		UpdatedAt: time.Now().UTC(),
		ClientIP:  meta.ClientIP,
	}); err != nil {
		h.logger.Error("failed to publish audit event",
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}
}

func updateResponse(code shortlink.Code, shortURL string) *UpdateLinkResponse {
	resp := &UpdateLinkResponse{}
	resp.Body.Detail = fmt.Sprintf("URL with ID '%s' updated", code)
	resp.Body.URL = shortURL

	return resp
}
