package model

import "strings"

// Book represents a book record. Title and Authors are required for a record
// to be persisted; everything else is optional. ISBNs, when present, are
// globally unique across all books.
type Book struct {
	ID          ID       `json:"_id"`
	OwnerID     ID       `json:"owner_id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Genres      []string `json:"genres,omitempty"`
	Description string   `json:"description,omitempty"`
	ISBN10      string   `json:"isbn_10,omitempty"`
	ISBN13      string   `json:"isbn_13,omitempty"`
}

// BookFields is the allow-list of projectable and sortable book fields.
// Field names outside this list are silently ignored.
var BookFields = []string{
	"title",
	"owner_id",
	"authors",
	"genres",
	"description",
	"isbn_10",
	"isbn_13",
}

// IsBookField reports whether name is a recognized book field.
func IsBookField(name string) bool {
	for _, f := range BookFields {
		if f == name {
			return true
		}
	}
	return false
}

// Matches reports whether any textual field of the book contains term as a
// case-insensitive substring. This is the single matching rule shared by book
// search and library search.
func (b *Book) Matches(term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return false
	}
	if strings.Contains(strings.ToLower(b.Title), term) {
		return true
	}
	for _, a := range b.Authors {
		if strings.Contains(strings.ToLower(a), term) {
			return true
		}
	}
	for _, g := range b.Genres {
		if strings.Contains(strings.ToLower(g), term) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(b.Description), term) {
		return true
	}
	return strings.Contains(b.ISBN10, term) || strings.Contains(b.ISBN13, term)
}
