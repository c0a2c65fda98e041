package user

import (
	"time"

	"github.com/google/uuid"
)

// Response is the account view returned by the API. One mapping
// function serves every endpoint instead of per-endpoint field copying.
type Response struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	Nickname           string     `json:"nickname"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Bio                string     `json:"bio"`
	Location           string     `json:"location"`
	ProfilePictureURL  string     `json:"profile_picture_url"`
	GithubProfileURL   string     `json:"github_profile_url"`
	LinkedinProfileURL string     `json:"linkedin_profile_url"`
	Role               Role       `json:"role"`
	EmailVerified      bool       `json:"email_verified"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Links              []Link     `json:"links"`
}

// NewResponse maps a domain user to its API view, attaching hypermedia
// links built from the base URL
func NewResponse(u *User, baseURL string) Response {
	return Response{
		ID:                 u.ID,
		Email:              u.Email,
		Nickname:           u.Nickname,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Bio:                u.Bio,
		Location:           u.Location,
		ProfilePictureURL:  u.ProfilePictureURL,
		GithubProfileURL:   u.GithubProfileURL,
		LinkedinProfileURL: u.LinkedinProfileURL,
		Role:               u.Role,
		EmailVerified:      u.EmailVerified,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
		Links:              ResourceLinks(u.ID, baseURL),
	}
}

// ListResponse is the paginated account listing
type ListResponse struct {
	Items []Response `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Links []Link     `json:"links"`
}

// NewListResponse maps a page of users plus pagination links
func NewListResponse(users []*User, total, offset, limit int, baseURL string) ListResponse {
	items := make([]Response, len(users))
	for i, u := range users {
		items[i] = NewResponse(u, baseURL)
	}

	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}

	return ListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Size:  len(items),
		Links: PaginationLinks(baseURL, offset, limit, total),
	}
}
