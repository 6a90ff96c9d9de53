package handlers

// ShortenRequest is the request body for creating a short link.
type ShortenRequest struct {
	Body struct {
		URL string `doc:"Destination URL to shorten" example:"https://example.com/very/long/path" json:"url"`
	}
}

// ShortenResponse is the response for a successfully created short link.
// The owner token is returned here exactly once and cannot be recovered.
type ShortenResponse struct {
	Body struct {
		URL        string `doc:"Absolute short link"                           example:"http://localhost:8888/aB3xQ1"             json:"url"`
		Code       string `doc:"The short code"                                example:"aB3xQ1"                                   json:"code"`
		OwnerToken string `doc:"Credential for update/delete, returned once"   example:"7b0c2a52-9a4e-4b61-9c1e-02b7f582a8d3"     json:"ownerToken"`
	}
}

// ResolveRequest is the request for resolving a short code.
type ResolveRequest struct {
	Code string `doc:"The short code" example:"aB3xQ1" path:"code"`
}

// ResolveResponse redirects to the destination URL.
type ResolveResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The destination URL" header:"Location"`
	}
}

// UpdateLinkRequest changes the destination of an existing link.
type UpdateLinkRequest struct {
	Code string `doc:"The short code" path:"code"`
	Body struct {
		OwnerToken string `doc:"Owner token issued at creation" json:"ownerToken"`
		URL        string `doc:"New destination URL"            json:"url"`
	}
}

// UpdateLinkResponse confirms an update.
type UpdateLinkResponse struct {
	Body struct {
		Detail string `doc:"Confirmation message" json:"detail"`
		URL    string `doc:"The short link"       json:"url"`
	}
}

// DeleteLinkRequest deletes a link, authorized by the X-Owner-Token header.
type DeleteLinkRequest struct {
	Code       string `doc:"The short code"                 path:"code"`
	OwnerToken string `doc:"Owner token issued at creation" header:"X-Owner-Token"`
}

// DeleteLinkResponse confirms a deletion.
type DeleteLinkResponse struct {
	Body struct {
		Detail string `doc:"Confirmation message" json:"detail"`
	}
}

// LegacyUpdateRequest is the old client's update body. The uuid field
// carries the owner token; the link is addressed by it.
type LegacyUpdateRequest struct {
	Body struct {
		UUID string `doc:"Owner token issued at creation" json:"uuid"`
		URL  string `doc:"New destination URL"            json:"url"`
	}
}

// LegacyDeleteRequest is the old client's GET-style delete. The token is
// taken from the X-Owner-Token header, falling back to the token query
// parameter.
type LegacyDeleteRequest struct {
	Code        string `doc:"The short code"                    path:"code"`
	HeaderToken string `doc:"Owner token issued at creation"    header:"X-Owner-Token" required:"false"`
	QueryToken  string `doc:"Owner token (header alternative)"  query:"token"          required:"false"`
}
