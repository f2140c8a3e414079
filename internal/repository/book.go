package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shelfstack/api/internal/database"
	"github.com/shelfstack/api/internal/model"
)

// BookRepository handles book persistence
type BookRepository struct {
	db database.Database
}

// NewBookRepository creates a new book repository
func NewBookRepository(db database.Database) *BookRepository {
	return &BookRepository{db: db}
}

// ListOptions controls projection, ordering and truncation of book listings.
// Zero value means everything, sorted by title, unbounded.
type ListOptions struct {
	Fields    []string // Projection; must already be allow-listed
	SortField string   // Must already be allow-listed
	Ascending bool
	Limit     int // 0 means no limit
}

// Create persists a new book record.
func (r *BookRepository) Create(ctx context.Context, book *model.Book) error {
	query := `CREATE type::record($id) CONTENT $data`
	err := r.db.Execute(ctx, query, map[string]interface{}{
		"id":   book.ID.String(),
		"data": bookContent(book),
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// GetByID retrieves a book by reference. Returns (nil, nil) if absent.
func (r *BookRepository) GetByID(ctx context.Context, id model.ID) (*model.Book, error) {
	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, idVars(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return parseBook(result)
}

// GetByIDs retrieves the books whose references appear in ids. Missing
// references are skipped, not reported.
func (r *BookRepository) GetByIDs(ctx context.Context, ids []model.ID) ([]*model.Book, error) {
	if len(ids) == 0 {
		return []*model.Book{}, nil
	}
	results, err := r.db.Query(ctx, `SELECT * FROM book WHERE <string> id INSIDE $ids ORDER BY title ASC`,
		map[string]interface{}{"ids": idStrings(ids)})
	if err != nil {
		return nil, fmt.Errorf("get books by ids: %w", err)
	}
	return parseBooks(results)
}

// List returns book records per the given options.
func (r *BookRepository) List(ctx context.Context, opts ListOptions) ([]*model.Book, error) {
	projection := "*"
	if len(opts.Fields) > 0 {
		projection = "id, " + strings.Join(opts.Fields, ", ")
	}
	sortField := opts.SortField
	if sortField == "" {
		sortField = "title"
	}
	direction := "DESC"
	if opts.Ascending {
		direction = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM book ORDER BY %s %s`, projection, sortField, direction)
	vars := map[string]interface{}{}
	if opts.Limit > 0 {
		query += " LIMIT $limit"
		vars["limit"] = opts.Limit
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return parseBooks(results)
}

// Search returns the books whose textual fields contain term as a
// case-insensitive substring, ordered by title.
func (r *BookRepository) Search(ctx context.Context, term string) ([]*model.Book, error) {
	query := `SELECT * FROM book WHERE
		string::contains(string::lowercase(title), $term)
		OR string::contains(string::lowercase(array::join(authors, " ")), $term)
		OR string::contains(string::lowercase(array::join(genres ?? [], " ")), $term)
		OR string::contains(string::lowercase(description ?? ""), $term)
		OR string::contains(isbn_10 ?? "", $term)
		OR string::contains(isbn_13 ?? "", $term)
		ORDER BY title ASC`
	results, err := r.db.Query(ctx, query, map[string]interface{}{
		"term": strings.ToLower(term),
	})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return parseBooks(results)
}

// Update merges set into the record and returns the number of records whose
// stored values actually changed. A record updated to its current values
// counts as matched but not modified.
func (r *BookRepository) Update(ctx context.Context, id model.ID, set map[string]interface{}) (int, error) {
	results, err := r.db.Query(ctx, `UPDATE type::record($id) MERGE $set RETURN DIFF`,
		map[string]interface{}{
			"id":  id.String(),
			"set": set,
		})
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, database.ErrDuplicate
		}
		return 0, fmt.Errorf("update book: %w", err)
	}
	return countDiffs(results), nil
}

// SetOwner reassigns a book to a new owner. Returns the modified count.
func (r *BookRepository) SetOwner(ctx context.Context, id, ownerID model.ID) (int, error) {
	results, err := r.db.Query(ctx, `UPDATE type::record($id) SET owner_id = $owner RETURN DIFF`,
		map[string]interface{}{
			"id":    id.String(),
			"owner": ownerID.String(),
		})
	if err != nil {
		return 0, fmt.Errorf("set book owner: %w", err)
	}
	return countDiffs(results), nil
}

// Delete removes a book record. Returns the number of records removed.
func (r *BookRepository) Delete(ctx context.Context, id model.ID) (int, error) {
	results, err := r.db.Query(ctx, `DELETE type::record($id) RETURN BEFORE`, idVars(id))
	if err != nil {
		return 0, fmt.Errorf("delete book: %w", err)
	}
	return len(queryRows(results)), nil
}

// DeleteByOwner removes every book owned by ownerID and returns the
// references of the removed records.
func (r *BookRepository) DeleteByOwner(ctx context.Context, ownerID model.ID) ([]model.ID, error) {
	results, err := r.db.Query(ctx, `DELETE book WHERE owner_id = $owner RETURN BEFORE`,
		map[string]interface{}{"owner": ownerID.String()})
	if err != nil {
		return nil, fmt.Errorf("delete books by owner: %w", err)
	}

	records := recordMaps(results)
	ids := make([]model.ID, 0, len(records))
	for _, record := range records {
		ids = append(ids, convertRecordID(record["id"]))
	}
	return ids, nil
}

// ISBNInUse reports whether any book other than exclude already claims one of
// the given ISBNs. Empty strings are skipped; pass exclude as "" to check all
// records.
func (r *BookRepository) ISBNInUse(ctx context.Context, isbn10, isbn13 string, exclude model.ID) (bool, error) {
	if isbn10 == "" && isbn13 == "" {
		return false, nil
	}

	var conditions []string
	vars := map[string]interface{}{}
	if isbn10 != "" {
		conditions = append(conditions, "isbn_10 = $isbn10")
		vars["isbn10"] = isbn10
	}
	if isbn13 != "" {
		conditions = append(conditions, "isbn_13 = $isbn13")
		vars["isbn13"] = isbn13
	}

	query := fmt.Sprintf(`SELECT id FROM book WHERE (%s)`, strings.Join(conditions, " OR "))
	if exclude != "" {
		query += ` AND <string> id != $exclude`
		vars["exclude"] = exclude.String()
	}
	query += ` LIMIT 1`

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return false, fmt.Errorf("check isbn: %w", err)
	}
	return len(queryRows(results)) > 0, nil
}

func bookContent(book *model.Book) map[string]interface{} {
	content := map[string]interface{}{
		"owner_id": book.OwnerID.String(),
		"title":    book.Title,
		"authors":  book.Authors,
	}
	if book.Genres != nil {
		content["genres"] = book.Genres
	}
	if book.Description != "" {
		content["description"] = book.Description
	}
	if book.ISBN10 != "" {
		content["isbn_10"] = book.ISBN10
	}
	if book.ISBN13 != "" {
		content["isbn_13"] = book.ISBN13
	}
	return content
}

func parseBook(result interface{}) (*model.Book, error) {
	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected book record type %T", result)
	}
	return parseBookMap(data), nil
}

func parseBooks(results []interface{}) ([]*model.Book, error) {
	records := recordMaps(results)
	books := make([]*model.Book, 0, len(records))
	for _, record := range records {
		books = append(books, parseBookMap(record))
	}
	return books, nil
}

func parseBookMap(data map[string]interface{}) *model.Book {
	return &model.Book{
		ID:          convertRecordID(data["id"]),
		OwnerID:     convertRecordID(data["owner_id"]),
		Title:       getString(data, "title"),
		Authors:     getStringSlice(data, "authors"),
		Genres:      getStringSlice(data, "genres"),
		Description: getString(data, "description"),
		ISBN10:      getString(data, "isbn_10"),
		ISBN13:      getString(data, "isbn_13"),
	}
}
