package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shelfstack/api/internal/model"
	"github.com/shelfstack/api/internal/service"
)

// BookHandler handles book catalog endpoints
type BookHandler struct {
	books *service.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(books *service.BookService) *BookHandler {
	return &BookHandler{books: books}
}

// Create handles POST /v1/books. The body is a free-form object; fields are
// sanitized individually and the created book is owned by the caller.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	book, err := h.books.AddBook(r.Context(), actor.ID.Hex(), input)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, book, map[string]string{
		"self": "/v1/books/" + book.ID.Hex(),
	})
}

// Get handles GET /v1/books/{id}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.GetBook(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, book, nil)
}

// List handles GET /v1/books. Query parameters: fields (comma-separated
// projection), sort, order (asc/desc), limit.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := service.GetBooksOptions{
		SortField: r.URL.Query().Get("sort"),
		Ascending: !strings.EqualFold(r.URL.Query().Get("order"), "desc"),
	}
	if fields := r.URL.Query().Get("fields"); fields != "" {
		opts.Fields = strings.Split(fields, ",")
	}
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil {
			WriteError(w, model.NewBadRequestError("limit must be an integer"))
			return
		}
		opts.Limit = limit
	}

	books, err := h.books.GetBooks(r.Context(), opts)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, books, nil)
}

// Search handles GET /v1/books/search?q=term
func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.SearchBooks(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, books, nil)
}

// Update handles PATCH /v1/books/{id}
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	book, err := h.books.UpdateBook(r.Context(), actor, r.PathValue("id"), input)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, book, nil)
}

// OwnerRequest represents the change-owner request body. The new owner may
// be given as a username or as a user ID.
type OwnerRequest struct {
	Owner   string `json:"owner"`
	OwnerID string `json:"owner_id"`
}

// UpdateOwner handles PUT /v1/books/{id}/owner
func (h *BookHandler) UpdateOwner(w http.ResponseWriter, r *http.Request) {
	actor, problem := actorFrom(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	var req OwnerRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	newOwner := req.Owner
	if newOwner == "" {
		newOwner = req.OwnerID
	}
	if err := h.books.UpdateBookOwner(r.Context(), actor, r.PathValue("id"), newOwner); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Delete handles DELETE /v1/books/{id}
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, problem := actorFrom(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	if err := h.books.DeleteBook(r.Context(), actor, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// LegacyList handles GET /api/books, kept for clients of the old API surface.
// It answers with a bare JSON array (empty catalog included) and, on any
// failure, a plain text 500 body. Do not change this contract.
func (h *BookHandler) LegacyList(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.GetBooks(r.Context(), service.GetBooksOptions{Ascending: true})
	if err != nil && !errors.Is(err, service.ErrNoBooks) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Error finding books"))
		return
	}
	if books == nil {
		books = []*model.Book{}
	}

	WriteJSON(w, http.StatusOK, books)
}
