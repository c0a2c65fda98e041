package user

import (
	"fmt"

	"github.com/google/uuid"
)

// Link is a hypermedia affordance pointing at a related valid next
// operation. Links are generated alongside responses, never persisted.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

// ResourceLinks builds the navigational links included with every
// account-returning response.
func ResourceLinks(id uuid.UUID, baseURL string) []Link {
	self := fmt.Sprintf("%s/users/%s", baseURL, id)
	return []Link{
		{Rel: "self", Href: self, Method: "GET"},
		{Rel: "update", Href: self, Method: "PUT"},
		{Rel: "delete", Href: self, Method: "DELETE"},
		{Rel: "list", Href: baseURL + "/users", Method: "GET"},
	}
}

// PaginationLinks builds navigation links for a list response. prev and
// next are omitted at the edges.
func PaginationLinks(baseURL string, offset, limit, total int) []Link {
	page := func(off int) string {
		return fmt.Sprintf("%s/users?offset=%d&limit=%d", baseURL, off, limit)
	}

	lastOffset := 0
	if limit > 0 && total > 0 {
		lastOffset = ((total - 1) / limit) * limit
	}

	links := []Link{
		{Rel: "self", Href: page(offset), Method: "GET"},
		{Rel: "first", Href: page(0), Method: "GET"},
		{Rel: "last", Href: page(lastOffset), Method: "GET"},
	}

	if offset+limit < total {
		links = append(links, Link{Rel: "next", Href: page(offset + limit), Method: "GET"})
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, Link{Rel: "prev", Href: page(prev), Method: "GET"})
	}

	return links
}
