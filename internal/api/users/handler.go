package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/auth"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/store"
)

// Handler handles user and API key HTTP requests.
type Handler struct {
	store *store.Store
	auth  *auth.Manager
}

// Register handles POST /api/v1/users/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterInput
	if !api.DecodeJSON(w, r, &in) {
		return
	}

	var details []api.ValidationDetail
	switch {
	case in.Email == "":
		details = append(details, api.FieldRequired("body", "email"))
	case !strings.Contains(in.Email, "@"):
		details = append(details, api.FieldInvalid("body", "email",
			"value is not a valid email address", "value_error"))
	}
	if in.Password == "" {
		details = append(details, api.FieldRequired("body", "password"))
	}
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		api.WriteInternal(w)
		return
	}

	user, err := h.store.Users.Create(r.Context(), in.Email, in.FullName, domain.RoleMember, hash)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			api.WriteDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		api.WriteInternal(w)
		return
	}

	api.WriteJSON(w, http.StatusOK, user)
}

// Login handles POST /api/v1/users/login. The body is form-encoded per the
// OAuth2 password flow: username and password fields.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		api.WriteValidationError(w, api.FieldInvalid("body", "username",
			"Input should be a valid form body", "value_error"))
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	var details []api.ValidationDetail
	if username == "" {
		details = append(details, api.FieldRequired("body", "username"))
	}
	if password == "" {
		details = append(details, api.FieldRequired("body", "password"))
	}
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	user, err := h.store.Users.GetByEmail(r.Context(), username)
	if err != nil || !user.IsActive || !auth.CheckPassword(user.PasswordHash, password) {
		api.WriteDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, domain.Token{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /api/v1/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := api.UserFrom(r.Context())
	if u == nil {
		api.WriteUnauthorized(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

// UpdateMe handles PATCH /api/v1/users/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	u := api.UserFrom(r.Context())
	if u == nil {
		api.WriteUnauthorized(w)
		return
	}

	var body struct {
		FullName string `json:"full_name"`
	}
	if !api.DecodeJSON(w, r, &body) {
		return
	}
	if body.FullName == "" {
		api.WriteValidationError(w, api.FieldRequired("body", "full_name"))
		return
	}

	updated, err := h.store.Users.UpdateName(r.Context(), u.ID, body.FullName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "User")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, updated)
}

// List handles GET /api/v1/users. Admin only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !api.RequireAdmin(w, r) {
		return
	}

	limit, offset, details := api.Pagination(r, 50)
	if len(details) > 0 {
		api.WriteValidationError(w, details...)
		return
	}

	users, total, err := h.store.Users.List(r.Context(), limit, offset)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteList(w, users, total, limit, offset)
}

// Get handles GET /api/v1/users/{user_id}. Admin only.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if !api.RequireAdmin(w, r) {
		return
	}

	user, err := h.store.Users.Get(r.Context(), r.PathValue("user_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "User")
			return
		}
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/v1/users/{user_id}. Admin only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !api.RequireAdmin(w, r) {
		return
	}

	if err := h.store.Users.Delete(r.Context(), r.PathValue("user_id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "User")
			return
		}
		api.WriteInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateKey handles POST /api/v1/users/me/api-keys. The plaintext secret is
// returned once and never stored.
func (h *Handler) CreateKey(w http.ResponseWriter, r *http.Request) {
	u := api.UserFrom(r.Context())
	if u == nil {
		api.WriteUnauthorized(w)
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if !api.DecodeJSON(w, r, &body) {
		return
	}
	if body.Name == "" {
		api.WriteValidationError(w, api.FieldRequired("body", "name"))
		return
	}

	plaintext, prefix, hash := auth.NewAPIKey()
	key, err := h.store.Users.CreateKey(r.Context(), u.ID, body.Name, prefix, hash)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	key.Secret = plaintext
	api.WriteJSON(w, http.StatusOK, key)
}

// ListKeys handles GET /api/v1/users/me/api-keys.
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	u := api.UserFrom(r.Context())
	if u == nil {
		api.WriteUnauthorized(w)
		return
	}

	keys, err := h.store.Users.ListKeys(r.Context(), u.ID)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	api.WriteJSON(w, http.StatusOK, keys)
}

// DeleteKey handles DELETE /api/v1/users/me/api-keys/{key_id}.
func (h *Handler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	u := api.UserFrom(r.Context())
	if u == nil {
		api.WriteUnauthorized(w)
		return
	}

	if err := h.store.Users.DeleteKey(r.Context(), u.ID, r.PathValue("key_id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteNotFound(w, "API key")
			return
		}
		api.WriteInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
