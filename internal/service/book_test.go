package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstack/api/internal/model"
)

func setupBookService() (*BookService, *mockUserRepo, *mockBookRepo, *mockLibraryRepo) {
	users := newMockUserRepo()
	books := newMockBookRepo()
	libraries := newMockLibraryRepo()
	return NewBookService(users, books, libraries), users, books, libraries
}

func TestBookService_AddBook(t *testing.T) {
	svc, users, books, _ := setupBookService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "reader"})

	book, err := svc.AddBook(ctx, owner.ID.Hex(), map[string]any{
		"title":       "The Dispossessed",
		"authors":     "Ursula K. Le Guin",
		"genres":      []any{"sf", 42, "utopia"},
		"description": "An ambiguous utopia.",
		"isbn_13":     "9780061054884",
		"bogus":       "dropped",
	})
	require.NoError(t, err)

	assert.Equal(t, owner.ID, book.OwnerID)
	assert.Equal(t, "The Dispossessed", book.Title)
	assert.Equal(t, []string{"Ursula K. Le Guin"}, book.Authors, "lone author string becomes a list")
	assert.Equal(t, []string{"sf", "utopia"}, book.Genres, "non-string entries filtered")
	assert.Equal(t, "9780061054884", book.ISBN13)
	assert.Contains(t, books.books, book.ID)
}

func TestBookService_AddBook_Errors(t *testing.T) {
	svc, users, books, _ := setupBookService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "reader"})
	books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "Taken", Authors: []string{"X"}, ISBN13: "9780061054884"})

	_, err := svc.AddBook(ctx, "nope", map[string]any{"title": "T", "authors": "A"})
	assert.ErrorIs(t, err, ErrInvalidUserID)

	_, err = svc.AddBook(ctx, model.NewID("user").Hex(), map[string]any{"title": "T", "authors": "A"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.AddBook(ctx, owner.ID.Hex(), map[string]any{"title": "", "isbn_10": "123"})
	assert.ErrorIs(t, err, ErrNoBookData, "every field invalid means no data")

	_, err = svc.AddBook(ctx, owner.ID.Hex(), map[string]any{"title": "No Authors"})
	assert.ErrorIs(t, err, ErrMissingBookData)

	_, err = svc.AddBook(ctx, owner.ID.Hex(), map[string]any{"title": "Dup", "authors": "A", "isbn_13": "9780061054884"})
	assert.ErrorIs(t, err, ErrDuplicateISBN)
}

func TestBookService_GetBooks(t *testing.T) {
	svc, _, books, _ := setupBookService()
	ctx := context.Background()

	_, err := svc.GetBooks(ctx, GetBooksOptions{})
	assert.ErrorIs(t, err, ErrNoBooks, "empty catalog is not found, not an empty list")

	_, err = svc.GetBooks(ctx, GetBooksOptions{Limit: -1})
	assert.ErrorIs(t, err, ErrInvalidLimit)

	books.add(&model.Book{ID: model.NewID("book"), Title: "B", Authors: []string{"X"}})
	books.add(&model.Book{ID: model.NewID("book"), Title: "A", Authors: []string{"Y"}})
	books.add(&model.Book{ID: model.NewID("book"), Title: "C", Authors: []string{"Z"}})

	got, err := svc.GetBooks(ctx, GetBooksOptions{Ascending: true})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Title)

	got, err = svc.GetBooks(ctx, GetBooksOptions{Ascending: true, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestBookService_SearchBooks(t *testing.T) {
	svc, _, books, _ := setupBookService()
	ctx := context.Background()

	books.add(&model.Book{ID: model.NewID("book"), Title: "The Left Hand of Darkness", Authors: []string{"Le Guin"}})
	books.add(&model.Book{ID: model.NewID("book"), Title: "Dune", Authors: []string{"Herbert"}})

	_, err := svc.SearchBooks(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidSearchTerm)

	got, err := svc.SearchBooks(ctx, "darkness")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "The Left Hand of Darkness", got[0].Title)

	_, err = svc.SearchBooks(ctx, "no such book")
	assert.ErrorIs(t, err, ErrNoBooks)
}

func TestBookService_UpdateBook(t *testing.T) {
	svc, users, books, _ := setupBookService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "owner"})
	stranger := users.add(&model.User{ID: model.NewID("user"), Username: "stranger"})
	admin := users.add(&model.User{ID: model.NewID("user"), Username: "root", Level: model.UserLevelAdmin})
	book := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "Old", Authors: []string{"A"}})

	// Strangers may not touch it.
	_, err := svc.UpdateBook(ctx, stranger, book.ID.Hex(), map[string]any{"title": "Stolen"})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, "Old", book.Title)

	// The owner may.
	updated, err := svc.UpdateBook(ctx, owner, book.ID.Hex(), map[string]any{"title": "New", "_id": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, book.ID, updated.ID, "identity fields never change")

	// So may an admin.
	updated, err = svc.UpdateBook(ctx, admin, book.ID.Hex(), map[string]any{"description": "annotated"})
	require.NoError(t, err)
	assert.Equal(t, "annotated", updated.Description)

	// A body with nothing valid in it.
	_, err = svc.UpdateBook(ctx, owner, book.ID.Hex(), map[string]any{"title": "", "isbn_10": "nope"})
	assert.ErrorIs(t, err, ErrNoValidUpdates)

	// Updating to the current values changes nothing.
	_, err = svc.UpdateBook(ctx, owner, book.ID.Hex(), map[string]any{"title": "New"})
	assert.ErrorIs(t, err, ErrNoUpdatesProcessed)
}

func TestBookService_UpdateBook_DuplicateISBN(t *testing.T) {
	svc, users, books, _ := setupBookService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "owner"})
	books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "Other", Authors: []string{"A"}, ISBN10: "0123456789"})
	mine := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "Mine", Authors: []string{"A"}, ISBN13: "9780061054884"})

	_, err := svc.UpdateBook(ctx, owner, mine.ID.Hex(), map[string]any{"isbn_10": "0123456789"})
	assert.ErrorIs(t, err, ErrDuplicateISBN)

	// Re-asserting a book's own ISBN is not a collision, just a no-op.
	_, err = svc.UpdateBook(ctx, owner, mine.ID.Hex(), map[string]any{"isbn_13": "9780061054884"})
	assert.ErrorIs(t, err, ErrNoUpdatesProcessed)
}

func TestBookService_UpdateBookOwner(t *testing.T) {
	svc, users, books, _ := setupBookService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "owner"})
	heir := users.add(&model.User{ID: model.NewID("user"), Username: "heir"})
	stranger := users.add(&model.User{ID: model.NewID("user"), Username: "stranger"})
	book := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "T", Authors: []string{"A"}})

	err := svc.UpdateBookOwner(ctx, stranger, book.ID.Hex(), heir.ID.Hex())
	assert.ErrorIs(t, err, ErrNotOwner)

	err = svc.UpdateBookOwner(ctx, owner, book.ID.Hex(), model.NewID("user").Hex())
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = svc.UpdateBookOwner(ctx, owner, book.ID.Hex(), heir.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, heir.ID, book.OwnerID)
}

func TestBookService_UpdateBookOwner_ByUsername(t *testing.T) {
	svc, users, books, _ := setupBookService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "owner"})
	heir := users.add(&model.User{ID: model.NewID("user"), Username: "heir"})
	book := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "T", Authors: []string{"A"}})

	err := svc.UpdateBookOwner(ctx, owner, book.ID.Hex(), "heir")
	require.NoError(t, err)
	assert.Equal(t, heir.ID, book.OwnerID)

	// Username resolution is case-insensitive, like login.
	err = svc.UpdateBookOwner(ctx, heir, book.ID.Hex(), "Owner")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, book.OwnerID)

	err = svc.UpdateBookOwner(ctx, owner, book.ID.Hex(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = svc.UpdateBookOwner(ctx, owner, book.ID.Hex(), "")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestBookService_DeleteBook(t *testing.T) {
	svc, users, books, libraries := setupBookService()
	ctx := context.Background()

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "owner"})
	book := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "T", Authors: []string{"A"}})
	keep := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "K", Authors: []string{"A"}})
	shelf := libraries.add(&model.Library{
		ID: model.NewID("library"), OwnerID: owner.ID, Title: "Shelf",
		BookIDs: []model.ID{book.ID, keep.ID},
	})

	err := svc.DeleteBook(ctx, owner, book.ID.Hex())
	require.NoError(t, err)

	assert.NotContains(t, books.books, book.ID)
	assert.Equal(t, []model.ID{keep.ID}, shelf.BookIDs, "deletion unlinks the book everywhere")

	err = svc.DeleteBook(ctx, owner, book.ID.Hex())
	assert.ErrorIs(t, err, ErrBookNotFound)
}

// stuckLibraryRepo reports one more matching library than it manages to
// modify, the shape a partially failed bulk unlink would have.
type stuckLibraryRepo struct {
	*mockLibraryRepo
}

func (m *stuckLibraryRepo) RemoveBookFromAll(ctx context.Context, bookID model.ID) (int, int, error) {
	matched, modified, err := m.mockLibraryRepo.RemoveBookFromAll(ctx, bookID)
	return matched + 1, modified, err
}

func TestBookService_DeleteBook_PartialUnlinkWarns(t *testing.T) {
	users := newMockUserRepo()
	books := newMockBookRepo()
	libraries := &stuckLibraryRepo{mockLibraryRepo: newMockLibraryRepo()}
	svc := NewBookService(users, books, libraries)
	ctx := context.Background()

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	defer slog.SetDefault(prev)

	owner := users.add(&model.User{ID: model.NewID("user"), Username: "owner"})
	book := books.add(&model.Book{ID: model.NewID("book"), OwnerID: owner.ID, Title: "T", Authors: []string{"A"}})

	// The delete itself still goes through; the mismatch is surfaced.
	require.NoError(t, svc.DeleteBook(ctx, owner, book.ID.Hex()))
	assert.NotContains(t, books.books, book.ID)
	assert.Contains(t, logs.String(), "book unlink incomplete")
}
