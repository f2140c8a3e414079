package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstack/api/internal/model"
	"github.com/shelfstack/api/internal/repository"
	"github.com/shelfstack/api/internal/service"
)

// stubBookRepo serves only the listing path; everything else is unreachable
// from the routes under test.
type stubBookRepo struct {
	books   []*model.Book
	listErr error
}

func (s *stubBookRepo) Create(ctx context.Context, book *model.Book) error { return nil }
func (s *stubBookRepo) GetByID(ctx context.Context, id model.ID) (*model.Book, error) {
	return nil, nil
}
func (s *stubBookRepo) GetByIDs(ctx context.Context, ids []model.ID) ([]*model.Book, error) {
	return nil, nil
}
func (s *stubBookRepo) List(ctx context.Context, opts repository.ListOptions) ([]*model.Book, error) {
	return s.books, s.listErr
}
func (s *stubBookRepo) Search(ctx context.Context, term string) ([]*model.Book, error) {
	return nil, nil
}
func (s *stubBookRepo) Update(ctx context.Context, id model.ID, set map[string]interface{}) (int, error) {
	return 0, nil
}
func (s *stubBookRepo) SetOwner(ctx context.Context, id, ownerID model.ID) (int, error) {
	return 0, nil
}
func (s *stubBookRepo) Delete(ctx context.Context, id model.ID) (int, error) { return 0, nil }
func (s *stubBookRepo) DeleteByOwner(ctx context.Context, ownerID model.ID) ([]model.ID, error) {
	return nil, nil
}
func (s *stubBookRepo) ISBNInUse(ctx context.Context, isbn10, isbn13 string, exclude model.ID) (bool, error) {
	return false, nil
}

func legacyHandler(repo *stubBookRepo) *BookHandler {
	return NewBookHandler(service.NewBookService(nil, repo, nil))
}

func TestBookHandler_LegacyList(t *testing.T) {
	book := &model.Book{
		ID:      model.NewID("book"),
		OwnerID: model.NewID("user"),
		Title:   "Dune",
		Authors: []string{"Frank Herbert"},
	}
	h := legacyHandler(&stubBookRepo{books: []*model.Book{book}})

	rec := httptest.NewRecorder()
	h.LegacyList(rec, httptest.NewRequest("GET", "/api/books", nil))

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	// The legacy contract is a bare array, not a data envelope.
	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Dune", got[0]["title"])
	assert.Equal(t, book.ID.Hex(), got[0]["_id"], "identifiers cross the wire in hex form")
}

func TestBookHandler_LegacyList_Empty(t *testing.T) {
	h := legacyHandler(&stubBookRepo{})

	rec := httptest.NewRecorder()
	h.LegacyList(rec, httptest.NewRequest("GET", "/api/books", nil))

	require.Equal(t, 200, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String(), "an empty catalog is an empty array, not an error")
}

func TestBookHandler_LegacyList_Error(t *testing.T) {
	h := legacyHandler(&stubBookRepo{listErr: errors.New("store down")})

	rec := httptest.NewRecorder()
	h.LegacyList(rec, httptest.NewRequest("GET", "/api/books", nil))

	require.Equal(t, 500, rec.Code)
	assert.Equal(t, "Error finding books", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}
