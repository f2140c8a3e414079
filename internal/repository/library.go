package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfstack/api/internal/database"
	"github.com/shelfstack/api/internal/model"
)

// LibraryRepository handles library persistence
type LibraryRepository struct {
	db database.Database
}

// NewLibraryRepository creates a new library repository
func NewLibraryRepository(db database.Database) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// Create persists a new library record.
func (r *LibraryRepository) Create(ctx context.Context, library *model.Library) error {
	query := `CREATE type::record($id) CONTENT {
		owner_id: $owner,
		title: $title,
		description: $description,
		book_ids: $books
	}`
	err := r.db.Execute(ctx, query, map[string]interface{}{
		"id":          library.ID.String(),
		"owner":       library.OwnerID.String(),
		"title":       library.Title,
		"description": library.Description,
		"books":       idStrings(library.BookIDs),
	})
	if err != nil {
		return fmt.Errorf("create library: %w", err)
	}
	return nil
}

// GetByID retrieves a library by reference. Returns (nil, nil) if absent.
func (r *LibraryRepository) GetByID(ctx context.Context, id model.ID) (*model.Library, error) {
	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, idVars(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get library: %w", err)
	}
	return parseLibrary(result)
}

// ListByOwner returns the libraries owned by ownerID ordered by title.
func (r *LibraryRepository) ListByOwner(ctx context.Context, ownerID model.ID) ([]*model.Library, error) {
	results, err := r.db.Query(ctx, `SELECT * FROM library WHERE owner_id = $owner ORDER BY title ASC`,
		map[string]interface{}{"owner": ownerID.String()})
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}

	records := recordMaps(results)
	libraries := make([]*model.Library, 0, len(records))
	for _, record := range records {
		libraries = append(libraries, parseLibraryMap(record))
	}
	return libraries, nil
}

// UpdateMeta merges the given title/description fields into the record and
// returns the number of records whose stored values actually changed.
func (r *LibraryRepository) UpdateMeta(ctx context.Context, id model.ID, set map[string]interface{}) (int, error) {
	results, err := r.db.Query(ctx, `UPDATE type::record($id) MERGE $set RETURN DIFF`,
		map[string]interface{}{
			"id":  id.String(),
			"set": set,
		})
	if err != nil {
		return 0, fmt.Errorf("update library: %w", err)
	}
	return countDiffs(results), nil
}

// Delete removes a library record. Returns the number of records removed.
func (r *LibraryRepository) Delete(ctx context.Context, id model.ID) (int, error) {
	results, err := r.db.Query(ctx, `DELETE type::record($id) RETURN BEFORE`, idVars(id))
	if err != nil {
		return 0, fmt.Errorf("delete library: %w", err)
	}
	return len(queryRows(results)), nil
}

// DeleteByOwner removes every library owned by ownerID. Returns the count.
func (r *LibraryRepository) DeleteByOwner(ctx context.Context, ownerID model.ID) (int, error) {
	results, err := r.db.Query(ctx, `DELETE library WHERE owner_id = $owner RETURN BEFORE`,
		map[string]interface{}{"owner": ownerID.String()})
	if err != nil {
		return 0, fmt.Errorf("delete libraries by owner: %w", err)
	}
	return len(queryRows(results)), nil
}

// AddBook appends bookID to the library's set. array::union keeps the set
// property under concurrent adds; adding a book already present modifies
// nothing. Returns the modified count.
func (r *LibraryRepository) AddBook(ctx context.Context, id, bookID model.ID) (int, error) {
	results, err := r.db.Query(ctx,
		`UPDATE type::record($id) SET book_ids = array::union(book_ids, [$book]) RETURN DIFF`,
		map[string]interface{}{
			"id":   id.String(),
			"book": bookID.String(),
		})
	if err != nil {
		return 0, fmt.Errorf("add book to library: %w", err)
	}
	return countDiffs(results), nil
}

// RemoveBook removes bookID from the library's set. Removing a book that is
// not present modifies nothing. Returns the modified count.
func (r *LibraryRepository) RemoveBook(ctx context.Context, id, bookID model.ID) (int, error) {
	results, err := r.db.Query(ctx,
		`UPDATE type::record($id) SET book_ids -= $book RETURN DIFF`,
		map[string]interface{}{
			"id":   id.String(),
			"book": bookID.String(),
		})
	if err != nil {
		return 0, fmt.Errorf("remove book from library: %w", err)
	}
	return countDiffs(results), nil
}

// RemoveBookFromAll removes bookID from every library referencing it.
// Returns how many libraries referenced the book and how many were changed.
func (r *LibraryRepository) RemoveBookFromAll(ctx context.Context, bookID model.ID) (matched, modified int, err error) {
	results, err := r.db.Query(ctx,
		`UPDATE library SET book_ids -= $book WHERE $book INSIDE book_ids RETURN DIFF`,
		map[string]interface{}{"book": bookID.String()})
	if err != nil {
		return 0, 0, fmt.Errorf("remove book from libraries: %w", err)
	}
	return len(queryRows(results)), countDiffs(results), nil
}

func parseLibrary(result interface{}) (*model.Library, error) {
	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected library record type %T", result)
	}
	return parseLibraryMap(data), nil
}

func parseLibraryMap(data map[string]interface{}) *model.Library {
	library := &model.Library{
		ID:          convertRecordID(data["id"]),
		OwnerID:     convertRecordID(data["owner_id"]),
		Title:       getString(data, "title"),
		Description: getString(data, "description"),
		BookIDs:     getIDSlice(data, "book_ids"),
	}
	if library.BookIDs == nil {
		library.BookIDs = []model.ID{}
	}
	return library
}
