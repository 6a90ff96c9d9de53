package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/shortlink"
)

// ErrorModel is the unified error envelope. The canonical field is detail;
// error duplicates it because the old browser client reads `error` on the
// shorten form and `detail` everywhere else.
type ErrorModel struct {
	status int

	Title  string `doc:"Human-readable status text"            json:"title,omitempty"`
	Status int    `doc:"HTTP status code"                      json:"status,omitempty"`
	Detail string `doc:"Explanation of the failure"            json:"detail,omitempty"`
	Legacy string `doc:"Legacy alias of detail"                json:"error,omitempty"`
}

func (e *ErrorModel) Error() string {
	return e.Detail
}

// GetStatus satisfies huma.StatusError.
func (e *ErrorModel) GetStatus() int {
	return e.status
}

// ContentType keeps plain application/json for the legacy client instead of
// problem+json.
func (e *ErrorModel) ContentType(string) string {
	return "application/json"
}

func init() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		detail := msg
		for _, err := range errs {
			if err == nil {
				continue
			}

			if detail == "" {
				detail = err.Error()
			}
		}

		return &ErrorModel{
			status: status,
			Title:  http.StatusText(status),
			Status: status,
			Detail: detail,
			Legacy: detail,
		}
	}
}

// mapError translates domain errors into HTTP status errors.
func mapError(err error) error {
	var ve *shortlink.ValidationError
	if errors.As(err, &ve) {
		return huma.Error400BadRequest(ve.Reason)
	}

	switch {
	case errors.Is(err, shortlink.ErrNotFound):
		return huma.Error404NotFound("short link not found")
	case errors.Is(err, shortlink.ErrGone):
		return huma.NewError(http.StatusGone, "short link has been deleted")
	case errors.Is(err, shortlink.ErrForbidden):
		return huma.Error403Forbidden("owner token does not match")
	case errors.Is(err, shortlink.ErrKeyspaceExhausted):
		return huma.Error500InternalServerError("unable to allocate a short code")
	case errors.Is(err, shortlink.ErrUnavailable):
		return huma.Error503ServiceUnavailable("store temporarily unavailable")
	default:
		return huma.Error500InternalServerError("internal error")
	}
}
