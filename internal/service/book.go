package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shelfstack/api/internal/database"
	"github.com/shelfstack/api/internal/model"
	"github.com/shelfstack/api/internal/repository"
	"github.com/shelfstack/api/internal/sanitize"
)

// BookService manages the book catalog
type BookService struct {
	users     UserRepository
	books     BookRepository
	libraries LibraryRepository
}

// NewBookService creates a new book service
func NewBookService(users UserRepository, books BookRepository, libraries LibraryRepository) *BookService {
	return &BookService{users: users, books: books, libraries: libraries}
}

// GetBooksOptions controls listing: field projection, ordering, truncation.
type GetBooksOptions struct {
	Fields    []string
	SortField string
	Ascending bool
	Limit     int
}

// AddBook sanitizes the input and creates a book owned by the given user.
// The input's own owner_id, if any, is ignored; ownership always comes from
// the ownerID argument.
func (s *BookService) AddBook(ctx context.Context, ownerID string, input map[string]any) (*model.Book, error) {
	uid, ok := model.ParseID("user", ownerID)
	if !ok {
		return nil, ErrInvalidUserID
	}
	owner, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	draft := sanitize.Book(input)
	if draft == nil {
		return nil, ErrNoBookData
	}
	if !draft.HasRequired() {
		return nil, ErrMissingBookData
	}

	book := &model.Book{
		ID:      model.NewID("book"),
		OwnerID: uid,
		Title:   *draft.Title,
		Authors: draft.Authors,
		Genres:  draft.Genres,
	}
	if draft.Description != nil {
		book.Description = *draft.Description
	}
	if draft.ISBN10 != nil {
		book.ISBN10 = *draft.ISBN10
	}
	if draft.ISBN13 != nil {
		book.ISBN13 = *draft.ISBN13
	}

	if book.ISBN10 != "" || book.ISBN13 != "" {
		inUse, err := s.books.ISBNInUse(ctx, book.ISBN10, book.ISBN13, "")
		if err != nil {
			return nil, fmt.Errorf("check isbn: %w", err)
		}
		if inUse {
			return nil, ErrDuplicateISBN
		}
	}

	if err := s.books.Create(ctx, book); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrDuplicateISBN
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	slog.Info("book added",
		slog.String("book_id", book.ID.Hex()),
		slog.String("owner_id", uid.Hex()),
		slog.String("title", book.Title),
	)
	return book, nil
}

// GetBook retrieves a single book.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*model.Book, error) {
	id, ok := model.ParseID("book", bookID)
	if !ok {
		return nil, ErrInvalidBookID
	}
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// GetBooks lists the catalog. Unknown projection or sort fields are dropped
// silently; a dropped sort field falls back to title. An empty catalog is
// reported as not found rather than as an empty list.
func (s *BookService) GetBooks(ctx context.Context, opts GetBooksOptions) ([]*model.Book, error) {
	if opts.Limit < 0 {
		return nil, ErrInvalidLimit
	}

	fields := make([]string, 0, len(opts.Fields))
	for _, f := range opts.Fields {
		if model.IsBookField(f) {
			fields = append(fields, f)
		}
	}
	sortField := opts.SortField
	if !model.IsBookField(sortField) {
		sortField = "title"
	}

	books, err := s.books.List(ctx, repository.ListOptions{
		Fields:    fields,
		SortField: sortField,
		Ascending: opts.Ascending,
		Limit:     opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if len(books) == 0 {
		return nil, ErrNoBooks
	}
	return books, nil
}

// SearchBooks returns the books matching term in any textual field.
func (s *BookService) SearchBooks(ctx context.Context, term string) ([]*model.Book, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrInvalidSearchTerm
	}

	books, err := s.books.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	if len(books) == 0 {
		return nil, ErrNoBooks
	}
	return books, nil
}

// UpdateBook sanitizes the input and merges the surviving fields into the
// record. Identity fields never change through this path. Only the owner or
// an admin may update; an update that changes nothing is an error.
func (s *BookService) UpdateBook(ctx context.Context, actor *model.User, bookID string, input map[string]any) (*model.Book, error) {
	id, ok := model.ParseID("book", bookID)
	if !ok {
		return nil, ErrInvalidBookID
	}
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	if !actor.CanModify(book.OwnerID) {
		return nil, ErrNotOwner
	}

	draft := sanitize.Book(input)
	if draft == nil {
		return nil, ErrNoValidUpdates
	}
	set := draft.SetMap()
	if len(set) == 0 {
		return nil, ErrNoValidUpdates
	}

	isbn10, _ := set["isbn_10"].(string)
	isbn13, _ := set["isbn_13"].(string)
	if isbn10 != "" || isbn13 != "" {
		inUse, err := s.books.ISBNInUse(ctx, isbn10, isbn13, id)
		if err != nil {
			return nil, fmt.Errorf("check isbn: %w", err)
		}
		if inUse {
			return nil, ErrDuplicateISBN
		}
	}

	modified, err := s.books.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrDuplicateISBN
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	if modified == 0 {
		return nil, ErrNoUpdatesProcessed
	}

	updated, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload book: %w", err)
	}
	return updated, nil
}

// UpdateBookOwner reassigns a book to another user, referenced by username
// or by external ID. Only the current owner or an admin may do this; the new
// owner must exist.
func (s *BookService) UpdateBookOwner(ctx context.Context, actor *model.User, bookID, newOwner string) error {
	id, ok := model.ParseID("book", bookID)
	if !ok {
		return ErrInvalidBookID
	}
	if newOwner == "" {
		return ErrInvalidUserID
	}

	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get book: %w", err)
	}
	if book == nil {
		return ErrBookNotFound
	}
	if !actor.CanModify(book.OwnerID) {
		return ErrNotOwner
	}

	owner, err := s.resolveUser(ctx, newOwner)
	if err != nil {
		return fmt.Errorf("get new owner: %w", err)
	}
	if owner == nil {
		return ErrUserNotFound
	}

	modified, err := s.books.SetOwner(ctx, id, owner.ID)
	if err != nil {
		return fmt.Errorf("set owner: %w", err)
	}
	if modified == 0 {
		return ErrNoUpdatesProcessed
	}

	slog.Info("book owner changed",
		slog.String("book_id", id.Hex()),
		slog.String("new_owner_id", owner.ID.Hex()),
		slog.String("changed_by", actor.ID.Hex()),
	)
	return nil
}

// resolveUser looks a user up by external ID when the reference parses as
// one, and by username otherwise. Returns (nil, nil) when nothing matches.
func (s *BookService) resolveUser(ctx context.Context, ref string) (*model.User, error) {
	if uid, ok := model.ParseID("user", ref); ok {
		return s.users.GetByID(ctx, uid)
	}
	return s.users.GetByUsername(ctx, strings.ToLower(ref))
}

// DeleteBook removes a book and every library reference to it. Only the
// owner or an admin may delete.
func (s *BookService) DeleteBook(ctx context.Context, actor *model.User, bookID string) error {
	id, ok := model.ParseID("book", bookID)
	if !ok {
		return ErrInvalidBookID
	}
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get book: %w", err)
	}
	if book == nil {
		return ErrBookNotFound
	}
	if !actor.CanModify(book.OwnerID) {
		return ErrNotOwner
	}

	// Unlink first so no library is left holding a dangling reference.
	matched, modified, err := s.libraries.RemoveBookFromAll(ctx, id)
	if err != nil {
		return fmt.Errorf("unlink book: %w", err)
	}
	if matched != modified {
		slog.Warn("book unlink incomplete",
			slog.String("book_id", id.Hex()),
			slog.Int("matched", matched),
			slog.Int("modified", modified),
		)
	}

	deleted, err := s.books.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if deleted == 0 {
		return ErrNothingDeleted
	}

	slog.Info("book deleted",
		slog.String("book_id", id.Hex()),
		slog.String("deleted_by", actor.ID.Hex()),
	)
	return nil
}
