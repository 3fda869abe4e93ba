package users

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/auth"
	"github.com/atelierhq/atelier/internal/store"
)

// RegisterRoutes adds all user and API key endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store, mgr *auth.Manager) {
	h := &Handler{store: s, auth: mgr}

	mux.HandleFunc("POST /api/v1/users/register", h.Register)
	mux.HandleFunc("POST /api/v1/users/login", h.Login)

	mux.HandleFunc("GET /api/v1/users/me", h.Me)
	mux.HandleFunc("PATCH /api/v1/users/me", h.UpdateMe)
	mux.HandleFunc("POST /api/v1/users/me/api-keys", h.CreateKey)
	mux.HandleFunc("GET /api/v1/users/me/api-keys", h.ListKeys)
	mux.HandleFunc("DELETE /api/v1/users/me/api-keys/{key_id}", h.DeleteKey)

	mux.HandleFunc("GET /api/v1/users", h.List)
	mux.HandleFunc("GET /api/v1/users/{user_id}", h.Get)
	mux.HandleFunc("DELETE /api/v1/users/{user_id}", h.Delete)
}
