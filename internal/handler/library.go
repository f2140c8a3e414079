package handler

import (
	"net/http"

	"github.com/shelfstack/api/internal/model"
	"github.com/shelfstack/api/internal/service"
)

// LibraryHandler handles library endpoints
type LibraryHandler struct {
	libraries *service.LibraryService
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(libraries *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraries: libraries}
}

// LibraryRequest represents the create-library request body
type LibraryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create handles POST /v1/libraries
func (h *LibraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, problem := actorFrom(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	var req LibraryRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	library, err := h.libraries.AddLibrary(r.Context(), actor.ID.Hex(), req.Title, req.Description)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, library, map[string]string{
		"self": "/v1/libraries/" + library.ID.Hex(),
	})
}

// List handles GET /v1/libraries, returning the caller's libraries.
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, problem := actorFrom(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	libraries, err := h.libraries.GetLibraries(r.Context(), actor.ID.Hex())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, libraries, nil)
}

// ListByUser handles GET /v1/users/{id}/libraries
func (h *LibraryHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	libraries, err := h.libraries.GetLibraries(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, libraries, nil)
}

// Get handles GET /v1/libraries/{id}
func (h *LibraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	library, err := h.libraries.GetLibrary(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, library, nil)
}

// Books handles GET /v1/libraries/{id}/books, resolving references into
// full book records.
func (h *LibraryHandler) Books(w http.ResponseWriter, r *http.Request) {
	books, err := h.libraries.GetLibraryBooks(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, books, nil)
}

// Search handles GET /v1/libraries/{id}/search?q=term
func (h *LibraryHandler) Search(w http.ResponseWriter, r *http.Request) {
	books, err := h.libraries.SearchLibrary(r.Context(), r.PathValue("id"), r.URL.Query().Get("q"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, books, nil)
}

// Update handles PATCH /v1/libraries/{id}
func (h *LibraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, problem := actorFrom(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	input, err := DecodeObject(r)
	if err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if _, err := h.libraries.UpdateLibrary(r.Context(), actor, r.PathValue("id"), input); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Delete handles DELETE /v1/libraries/{id}
func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, problem := actorFrom(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	if err := h.libraries.DeleteLibrary(r.Context(), actor, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// AddBook handles PUT /v1/libraries/{id}/books/{bookID}
func (h *LibraryHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	actor, problem := actorFrom(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	if err := h.libraries.AddToLibrary(r.Context(), actor, r.PathValue("id"), r.PathValue("bookID")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// RemoveBook handles DELETE /v1/libraries/{id}/books/{bookID}
func (h *LibraryHandler) RemoveBook(w http.ResponseWriter, r *http.Request) {
	actor, problem := actorFrom(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	if err := h.libraries.RemoveFromLibrary(r.Context(), actor, r.PathValue("id"), r.PathValue("bookID")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
