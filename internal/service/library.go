package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shelfstack/api/internal/model"
)

// LibraryService manages user libraries and their book references
type LibraryService struct {
	users     UserRepository
	books     BookRepository
	libraries LibraryRepository
}

// NewLibraryService creates a new library service
func NewLibraryService(users UserRepository, books BookRepository, libraries LibraryRepository) *LibraryService {
	return &LibraryService{users: users, books: books, libraries: libraries}
}

// AddLibrary creates a library for the given owner. An empty title falls
// back to the default starter title.
func (s *LibraryService) AddLibrary(ctx context.Context, ownerID, title, description string) (*model.Library, error) {
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

	if title == "" {
		title = DefaultLibraryTitle
	}
	library := &model.Library{
		ID:          model.NewID("library"),
		OwnerID:     uid,
		Title:       title,
		Description: description,
		BookIDs:     []model.ID{},
	}
	if err := s.libraries.Create(ctx, library); err != nil {
		return nil, fmt.Errorf("create library: %w", err)
	}

	slog.Info("library created",
		slog.String("library_id", library.ID.Hex()),
		slog.String("owner_id", uid.Hex()),
	)
	return library, nil
}

// GetLibrary retrieves a single library.
func (s *LibraryService) GetLibrary(ctx context.Context, libraryID string) (*model.Library, error) {
	id, ok := model.ParseID("library", libraryID)
	if !ok {
		return nil, ErrInvalidLibraryID
	}
	library, err := s.libraries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get library: %w", err)
	}
	if library == nil {
		return nil, ErrLibraryNotFound
	}
	return library, nil
}

// GetLibraries lists a user's libraries. A user with no libraries gets an
// empty list, not an error.
func (s *LibraryService) GetLibraries(ctx context.Context, ownerID string) ([]*model.Library, error) {
	uid, ok := model.ParseID("user", ownerID)
	if !ok {
		return nil, ErrInvalidUserID
	}
	libraries, err := s.libraries.ListByOwner(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	return libraries, nil
}

// GetLibraryBooks resolves a library's references into book records. A
// missing library is an error; a library whose references all point at
// deleted books resolves to an empty list.
func (s *LibraryService) GetLibraryBooks(ctx context.Context, libraryID string) ([]*model.Book, error) {
	library, err := s.GetLibrary(ctx, libraryID)
	if err != nil {
		return nil, err
	}
	if len(library.BookIDs) == 0 {
		return []*model.Book{}, nil
	}

	books, err := s.books.GetByIDs(ctx, library.BookIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve library books: %w", err)
	}
	return books, nil
}

// UpdateLibrary merges valid title/description fields into the library.
// Returns whether the record actually changed; a no-op update is not an
// error here because the common caller is a rename to the same value.
func (s *LibraryService) UpdateLibrary(ctx context.Context, actor *model.User, libraryID string, input map[string]any) (bool, error) {
	id, ok := model.ParseID("library", libraryID)
	if !ok {
		return false, ErrInvalidLibraryID
	}
	library, err := s.libraries.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get library: %w", err)
	}
	if library == nil {
		return false, ErrLibraryNotFound
	}
	if !actor.CanModify(library.OwnerID) {
		return false, ErrNotOwner
	}

	set := map[string]interface{}{}
	if title, ok := input["title"].(string); ok && title != "" {
		set["title"] = title
	}
	if description, ok := input["description"].(string); ok && description != "" {
		set["description"] = description
	}
	if len(set) == 0 {
		return false, ErrNoValidUpdates
	}

	modified, err := s.libraries.UpdateMeta(ctx, id, set)
	if err != nil {
		return false, fmt.Errorf("update library: %w", err)
	}
	return modified > 0, nil
}

// DeleteLibrary removes a library. Its books are untouched; the library only
// held references. Only the owner or an admin may delete.
func (s *LibraryService) DeleteLibrary(ctx context.Context, actor *model.User, libraryID string) error {
	id, ok := model.ParseID("library", libraryID)
	if !ok {
		return ErrInvalidLibraryID
	}
	library, err := s.libraries.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get library: %w", err)
	}
	if library == nil {
		return ErrLibraryNotFound
	}
	if !actor.CanModify(library.OwnerID) {
		return ErrNotOwner
	}

	deleted, err := s.libraries.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete library: %w", err)
	}
	if deleted == 0 {
		return ErrNothingDeleted
	}

	slog.Info("library deleted",
		slog.String("library_id", id.Hex()),
		slog.String("deleted_by", actor.ID.Hex()),
	)
	return nil
}

// AddToLibrary adds a book reference to a library. The book must exist and
// must not already be referenced. Only the library's owner or an admin may
// add.
func (s *LibraryService) AddToLibrary(ctx context.Context, actor *model.User, libraryID, bookID string) error {
	lid, ok := model.ParseID("library", libraryID)
	if !ok {
		return ErrInvalidLibraryID
	}
	bid, ok := model.ParseID("book", bookID)
	if !ok {
		return ErrInvalidBookID
	}

	library, err := s.libraries.GetByID(ctx, lid)
	if err != nil {
		return fmt.Errorf("get library: %w", err)
	}
	if library == nil {
		return ErrLibraryNotFound
	}
	if !actor.CanModify(library.OwnerID) {
		return ErrNotOwner
	}

	book, err := s.books.GetByID(ctx, bid)
	if err != nil {
		return fmt.Errorf("get book: %w", err)
	}
	if book == nil {
		return ErrBookNotFound
	}
	if library.Contains(bid) {
		return ErrAlreadyInLibrary
	}

	// The store-level union keeps book_ids a set even if two adds race
	// past the Contains check; the loser just modifies nothing.
	modified, err := s.libraries.AddBook(ctx, lid, bid)
	if err != nil {
		return fmt.Errorf("add book to library: %w", err)
	}
	if modified == 0 {
		return ErrAlreadyInLibrary
	}
	return nil
}

// RemoveFromLibrary removes a book reference from a library. Removing a book
// the library does not reference is reported as not found.
func (s *LibraryService) RemoveFromLibrary(ctx context.Context, actor *model.User, libraryID, bookID string) error {
	lid, ok := model.ParseID("library", libraryID)
	if !ok {
		return ErrInvalidLibraryID
	}
	bid, ok := model.ParseID("book", bookID)
	if !ok {
		return ErrInvalidBookID
	}

	library, err := s.libraries.GetByID(ctx, lid)
	if err != nil {
		return fmt.Errorf("get library: %w", err)
	}
	if library == nil {
		return ErrLibraryNotFound
	}
	if !actor.CanModify(library.OwnerID) {
		return ErrNotOwner
	}

	modified, err := s.libraries.RemoveBook(ctx, lid, bid)
	if err != nil {
		return fmt.Errorf("remove book from library: %w", err)
	}
	if modified == 0 {
		return ErrBookNotFound
	}
	return nil
}

// SearchLibrary filters a library's resolved books by the shared matching
// rule. No match is an empty list, not an error.
func (s *LibraryService) SearchLibrary(ctx context.Context, libraryID, term string) ([]*model.Book, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrInvalidSearchTerm
	}

	books, err := s.GetLibraryBooks(ctx, libraryID)
	if err != nil {
		return nil, err
	}

	matches := make([]*model.Book, 0, len(books))
	for _, book := range books {
		if book.Matches(term) {
			matches = append(matches, book)
		}
	}
	return matches, nil
}
