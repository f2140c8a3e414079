package handler

import (
	"net/http"

	"github.com/shelfstack/api/internal/model"
	"github.com/shelfstack/api/internal/service"
)

// UserHandler handles user account endpoints
type UserHandler struct {
	identity *service.IdentityService
}

// NewUserHandler creates a new user handler
func NewUserHandler(identity *service.IdentityService) *UserHandler {
	return &UserHandler{identity: identity}
}

// List handles GET /v1/users. Admin only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, problem := actorFrom(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}
	if !actor.IsAdmin() {
		WriteError(w, model.NewForbiddenError("admin level required"))
		return
	}

	users, err := h.identity.GetUsers(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, users, nil)
}

// Get handles GET /v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}

// GetByUsername handles GET /v1/users/by-username/{username}
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.GetUser(r.Context(), r.PathValue("username"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}

// Delete handles DELETE /v1/users/{id}. The account itself or an admin may
// delete; everything the account owns goes with it.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, problem := actorFrom(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	if err := h.identity.RemoveUser(r.Context(), actor, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
