package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all short link routes, canonical and legacy.
func RegisterRoutes(api huma.API, linkHandler *LinkHandler) {
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Create short link",
		Description: "Creates a short link for the given URL and returns the owner token, once.",
		Tags:        []string{"Links"},
	}, linkHandler.Shorten)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to destination URL",
		Description: "Redirects to the destination URL associated with the short code.",
		Tags:        []string{"Links"},
	}, linkHandler.Resolve)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPut,
		Path:        "/links/{code}",
		Summary:     "Update destination URL",
		Description: "Changes the destination of an existing link. Requires the owner token.",
		Tags:        []string{"Links"},
	}, linkHandler.Update)

	huma.Register(api, huma.Operation{
		Method:      http.MethodDelete,
		Path:        "/links/{code}",
		Summary:     "Delete short link",
		Description: "Marks a link deleted. Requires the owner token. Deleting twice succeeds.",
		Tags:        []string{"Links"},
	}, linkHandler.Delete)

	// Old client routes. Kept until the browser extension is retired.
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/update",
		Summary:     "Update destination URL (legacy)",
		Description: "Old update contract. The uuid field carries the owner token and addresses the link.",
		Tags:        []string{"Links"},
		Deprecated:  true,
	}, linkHandler.LegacyUpdate)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/delete/{code}",
		Summary:     "Delete short link (legacy)",
		Description: "Old GET-style delete. The owner token comes from the X-Owner-Token header or the token query parameter.",
		Tags:        []string{"Links"},
		Deprecated:  true,
	}, linkHandler.LegacyDelete)
}
