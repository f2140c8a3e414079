package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstack/api/internal/model"
)

func setupLibraryService() (*LibraryService, *mockUserRepo, *mockBookRepo, *mockLibraryRepo) {
	users := newMockUserRepo()
	books := newMockBookRepo()
	libraries := newMockLibraryRepo()
	return NewLibraryService(users, books, libraries), users, books, libraries
}

func TestLibraryService_AddLibrary(t *testing.T) {
	svc, users, _, libraries := setupLibraryService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "reader"})

	library, err := svc.AddLibrary(ctx, owner.ID.Hex(), "Sci-Fi", "space stuff")
	require.NoError(t, err)
	assert.Equal(t, "Sci-Fi", library.Title)
	assert.Equal(t, owner.ID, library.OwnerID)
	assert.NotNil(t, library.BookIDs)
	assert.Contains(t, libraries.libraries, library.ID)

	// Empty title falls back to the starter title.
	library, err = svc.AddLibrary(ctx, owner.ID.Hex(), "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLibraryTitle, library.Title)

	_, err = svc.AddLibrary(ctx, model.NewID("user").Hex(), "T", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLibraryService_GetLibraryBooks(t *testing.T) {
	svc, users, books, libraries := setupLibraryService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "reader"})
	book := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "T", Authors: []string{"A"}})
	ghost := model.NewID("book") // Reference to a book that no longer exists

	empty := libraries.add(&model.Library{ID: model.NewID("library"), OwnerID: owner.ID, Title: "Empty", BookIDs: []model.ID{}})
	full := libraries.add(&model.Library{ID: model.NewID("library"), OwnerID: owner.ID, Title: "Full", BookIDs: []model.ID{book.ID, ghost}})

	// Missing library and empty library are different outcomes.
	_, err := svc.GetLibraryBooks(ctx, model.NewID("library").Hex())
	assert.ErrorIs(t, err, ErrLibraryNotFound)

	got, err := svc.GetLibraryBooks(ctx, empty.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.GetLibraryBooks(ctx, full.ID.Hex())
	require.NoError(t, err)
	require.Len(t, got, 1, "dangling references resolve to nothing")
	assert.Equal(t, book.ID, got[0].ID)
}

func TestLibraryService_AddToLibrary(t *testing.T) {
	svc, users, books, libraries := setupLibraryService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "owner"})
	stranger := users.add(&model.User{ID: model.NewID("user"), Username: "stranger"})
	book := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "T", Authors: []string{"A"}})
	shelf := libraries.add(&model.Library{ID: model.NewID("library"), OwnerID: owner.ID, Title: "Shelf", BookIDs: []model.ID{}})

	err := svc.AddToLibrary(ctx, stranger, shelf.ID.Hex(), book.ID.Hex())
	assert.ErrorIs(t, err, ErrNotOwner)

	err = svc.AddToLibrary(ctx, owner, shelf.ID.Hex(), model.NewID("book").Hex())
	assert.ErrorIs(t, err, ErrBookNotFound)

	err = svc.AddToLibrary(ctx, owner, shelf.ID.Hex(), book.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []model.ID{book.ID}, shelf.BookIDs)

	// The set property: adding twice is refused.
	err = svc.AddToLibrary(ctx, owner, shelf.ID.Hex(), book.ID.Hex())
	assert.ErrorIs(t, err, ErrAlreadyInLibrary)
	assert.Len(t, shelf.BookIDs, 1)
}

func TestLibraryService_RemoveFromLibrary(t *testing.T) {
	svc, users, books, libraries := setupLibraryService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "owner"})
	book := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "T", Authors: []string{"A"}})
	shelf := libraries.add(&model.Library{ID: model.NewID("library"), OwnerID: owner.ID, Title: "Shelf", BookIDs: []model.ID{book.ID}})

	err := svc.RemoveFromLibrary(ctx, owner, shelf.ID.Hex(), book.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, shelf.BookIDs)

	// Removing a book the library does not hold.
	err = svc.RemoveFromLibrary(ctx, owner, shelf.ID.Hex(), book.ID.Hex())
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestLibraryService_UpdateLibrary(t *testing.T) {
	svc, users, _, libraries := setupLibraryService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "owner"})
	shelf := libraries.add(&model.Library{ID: model.NewID("library"), OwnerID: owner.ID, Title: "Old"})

	changed, err := svc.UpdateLibrary(ctx, owner, shelf.ID.Hex(), map[string]any{"title": "New", "book_ids": "ignored"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "New", shelf.Title)

	// A rename to the same value is fine, it just changes nothing.
	changed, err = svc.UpdateLibrary(ctx, owner, shelf.ID.Hex(), map[string]any{"title": "New"})
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = svc.UpdateLibrary(ctx, owner, shelf.ID.Hex(), map[string]any{"title": ""})
	assert.ErrorIs(t, err, ErrNoValidUpdates)
}

func TestLibraryService_DeleteLibrary(t *testing.T) {
	svc, users, books, libraries := setupLibraryService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "owner"})
	admin := users.add(&model.User{ID: model.NewID("user"), Username: "root", Level: model.UserLevelAdmin})
	book := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "T", Authors: []string{"A"}})
	shelf := libraries.add(&model.Library{ID: model.NewID("library"), OwnerID: owner.ID, Title: "Shelf", BookIDs: []model.ID{book.ID}})

	err := svc.DeleteLibrary(ctx, admin, shelf.ID.Hex())
	require.NoError(t, err)
	assert.NotContains(t, libraries.libraries, shelf.ID)
	assert.Contains(t, books.books, book.ID, "deleting a library never deletes books")

	err = svc.DeleteLibrary(ctx, admin, shelf.ID.Hex())
	assert.ErrorIs(t, err, ErrLibraryNotFound)
}

func TestLibraryService_SearchLibrary(t *testing.T) {
	svc, users, books, libraries := setupLibraryService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "owner"})
	hit := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "A Wizard of Earthsea", Authors: []string{"Le Guin"}})
	miss := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "Dune", Authors: []string{"Herbert"}})
	shelf := libraries.add(&model.Library{
		ID: model.NewID("library"), OwnerID: owner.ID, Title: "Shelf",
		BookIDs: []model.ID{hit.ID, miss.ID},
	})

	_, err := svc.SearchLibrary(ctx, shelf.ID.Hex(), "")
	assert.ErrorIs(t, err, ErrInvalidSearchTerm)

	got, err := svc.SearchLibrary(ctx, shelf.ID.Hex(), "WIZARD")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, hit.ID, got[0].ID)

	// No match is an empty list, not an error.
	got, err = svc.SearchLibrary(ctx, shelf.ID.Hex(), "cookbook")
	require.NoError(t, err)
	assert.Empty(t, got)
}
