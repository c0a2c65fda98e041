package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciaraugasmoy/user-management-api/internal/logging"
)

// fakeService backs the handlers with canned accounts
type fakeService struct {
	users       map[uuid.UUID]*User
	registerErr error
}

func newFakeService(users ...*User) *fakeService {
	m := make(map[uuid.UUID]*User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeService{users: m}
}

func (f *fakeService) Register(ctx context.Context, reg Registration) (*User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, reg.Email) {
			return nil, ErrDuplicateEmail
		}
	}
	u := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(reg.Email),
		Nickname:  reg.Nickname,
		Role:      RoleAuthenticated,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeService) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (f *fakeService) GetIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u.ID, nil
		}
	}
	return uuid.Nil, ErrNotFound
}

func (f *fakeService) List(ctx context.Context, offset, limit int) ([]*User, int, error) {
	out := make([]*User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (f *fakeService) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if params.Nickname != nil {
		u.Nickname = *params.Nickname
	}
	if params.Bio != nil {
		u.Bio = *params.Bio
	}
	if params.Role != nil {
		u.Role = *params.Role
	}
	return u, nil
}

func (f *fakeService) UpdateProfileField(ctx context.Context, id uuid.UUID, field ProfileField, value string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	switch field {
	case FieldNickname:
		u.Nickname = value
	case FieldBio:
		u.Bio = value
	case FieldLocation:
		u.Location = value
	case FieldProfilePictureURL:
		u.ProfilePictureURL = value
	case FieldGithubProfileURL:
		u.GithubProfileURL = value
	case FieldLinkedinProfileURL:
		u.LinkedinProfileURL = value
	}
	return u, nil
}

func (f *fakeService) GetProfileField(ctx context.Context, id uuid.UUID, field ProfileField) (string, error) {
	u, ok := f.users[id]
	if !ok {
		return "", ErrNotFound
	}
	return field.ValueFrom(u), nil
}

func (f *fakeService) UpgradeRole(ctx context.Context, id uuid.UUID, newRole Role) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Role = newRole
	return u, nil
}

func (f *fakeService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func newTestRouter(svc Service) *chi.Mux {
	h := NewHandler(svc, logging.NewLogger(true), testBaseURL)

	r := chi.NewRouter()
	r.Get("/users", h.List)
	r.Post("/users", h.Create)
	r.Get("/users/{userID}", h.Get)
	r.Put("/users/{userID}", h.Update)
	r.Delete("/users/{userID}", h.Delete)
	r.Put("/users/{userID}/professional", h.UpgradeToProfessional)
	r.Get("/users/id", h.GetID)
	r.Get("/users/{userID}/{field}", h.GetField)
	r.Put("/users/{userID}/{field}", h.UpdateField)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerGet(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "gopher@example.com", Role: RoleAuthenticated}
	router := newTestRouter(newFakeService(u))

	rec := doRequest(t, router, http.MethodGet, "/users/"+u.ID.String(), "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, u.ID, resp.ID)
	assert.Equal(t, "gopher@example.com", resp.Email)
	assert.Len(t, resp.Links, 4)
}

func TestHandlerGetUnknownUser(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newFakeService())

	rec := doRequest(t, router, http.MethodGet, "/users/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerGetInvalidUserID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newFakeService())

	// Not a UUID and not a known field name either
	rec := doRequest(t, router, http.MethodGet, "/users/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newFakeService())

	rec := doRequest(t, router, http.MethodPost, "/users", `{"email":"new@example.com","password":"correct-horse"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "new@example.com", resp.Email)
	assert.Equal(t, RoleAuthenticated, resp.Role)
}

func TestHandlerCreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "taken@example.com"}
	router := newTestRouter(newFakeService(u))

	rec := doRequest(t, router, http.MethodPost, "/users", `{"email":"taken@example.com","password":"correct-horse"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMAIL_ALREADY_EXISTS")
}

func TestHandlerCreateValidationErrors(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newFakeService())

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing email", `{"password":"correct-horse"}`, "EMAIL_REQUIRED"},
		{"malformed email", `{"email":"not-an-email","password":"correct-horse"}`, "INVALID_EMAIL_FORMAT"},
		{"missing password", `{"email":"new@example.com"}`, "PASSWORD_REQUIRED"},
		{"short password", `{"email":"new@example.com","password":"short"}`, "PASSWORD_TOO_SHORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/users", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestHandlerCreateStoreFaultIs500(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	svc.registerErr = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodPost, "/users", `{"email":"new@example.com","password":"correct-horse"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	// The driver error must never reach the client
	assert.NotContains(t, rec.Body.String(), "dial tcp")
}

func TestHandlerUpdate(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "gopher@example.com"}
	router := newTestRouter(newFakeService(u))

	rec := doRequest(t, router, http.MethodPut, "/users/"+u.ID.String(), `{"nickname":"renamed"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "renamed", resp.Nickname)
}

func TestHandlerDelete(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "gopher@example.com"}
	svc := newFakeService(u)
	router := newTestRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/users/"+u.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/users/"+u.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerList(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newFakeService(
		&User{ID: uuid.New(), Email: "a@example.com"},
		&User{ID: uuid.New(), Email: "b@example.com"},
		&User{ID: uuid.New(), Email: "c@example.com"},
	))

	rec := doRequest(t, router, http.MethodGet, "/users?offset=0&limit=2", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.Size)
	assert.True(t, hasRel(resp.Links, "next"))
}

func TestHandlerListRejectsBadPagination(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newFakeService())

	for _, query := range []string{"?offset=-1", "?limit=0", "?offset=abc", "?limit=xyz"} {
		rec := doRequest(t, router, http.MethodGet, "/users"+query, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %s", query)
		assert.Contains(t, rec.Body.String(), "INVALID_PAGINATION", "query %s", query)
	}
}

func TestHandlerListCapsLimit(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newFakeService(&User{ID: uuid.New(), Email: "a@example.com"}))

	// An oversized limit is clamped rather than rejected
	rec := doRequest(t, router, http.MethodGet, "/users?limit=5000", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerUpgradeToProfessional(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "gopher@example.com", Role: RoleAuthenticated}
	router := newTestRouter(newFakeService(u))

	rec := doRequest(t, router, http.MethodPut, "/users/"+u.ID.String()+"/professional", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, RoleProfessional, resp.Role)
}

func TestHandlerGetID(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "gopher@example.com"}
	router := newTestRouter(newFakeService(u))

	rec := doRequest(t, router, http.MethodGet, "/users/id?email=gopher@example.com", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, map[string]string{"user_id": u.ID.String()}, resp)
}

func TestHandlerGetIDUnknownEmail(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newFakeService())

	rec := doRequest(t, router, http.MethodGet, "/users/id?email=nobody@example.com", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerGetIDMissingEmail(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newFakeService())

	rec := doRequest(t, router, http.MethodGet, "/users/id", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMAIL_REQUIRED")
}

func TestHandlerGetField(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "gopher@example.com", Bio: "writes Go"}
	router := newTestRouter(newFakeService(u))

	rec := doRequest(t, router, http.MethodGet, "/users/"+u.ID.String()+"/bio", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, map[string]string{"bio": "writes Go"}, resp)
}

func TestHandlerGetFieldEmptyValueIs404(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "gopher@example.com"}
	router := newTestRouter(newFakeService(u))

	rec := doRequest(t, router, http.MethodGet, "/users/"+u.ID.String()+"/bio", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerGetFieldUnknownField(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "gopher@example.com"}
	router := newTestRouter(newFakeService(u))

	rec := doRequest(t, router, http.MethodGet, "/users/"+u.ID.String()+"/password_hash", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerUpdateField(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Email: "gopher@example.com"}
	router := newTestRouter(newFakeService(u))

	rec := doRequest(t, router, http.MethodPut, "/users/"+u.ID.String()+"/location", `{"value":"Berlin"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Berlin", resp.Location)
}
