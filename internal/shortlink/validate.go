package shortlink

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxTargetLength caps accepted destination URLs (de facto browser limit).
const MaxTargetLength = 2083

// TargetValidator validates destination URLs before they reach the store.
type TargetValidator struct {
	selfHost string
}

// NewTargetValidator creates a validator that also rejects URLs pointing
// back at the service itself, preventing redirect loops.
func NewTargetValidator(baseURL string) (*TargetValidator, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return &TargetValidator{selfHost: strings.ToLower(u.Host)}, nil
}

// Validate checks that raw is an acceptable destination URL.
// Returned errors are *ValidationError and safe to render to clients.
func (v *TargetValidator) Validate(raw string) error {
	if raw == "" {
		return &ValidationError{Reason: "url is required"}
	}

	if len(raw) > MaxTargetLength {
		return &ValidationError{Reason: fmt.Sprintf("URL exceeds %d characters", MaxTargetLength)}
	}

	// Message kept from the legacy server; the browser client renders it verbatim.
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return &ValidationError{Reason: "URL should start with http:// or https://"}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return &ValidationError{Reason: "URL must be a valid absolute URL"}
	}

	if strings.EqualFold(u.Host, v.selfHost) {
		return &ValidationError{Reason: "URL must not point back at this service"}
	}

	return nil
}
