// Package sanitize converts untrusted input objects into canonical record
// drafts. Fields that fail their checks are dropped, never reported; the
// decision whether the surviving fields are acceptable belongs to the caller.
package sanitize

import (
	"regexp"

	"github.com/shelfstack/api/internal/model"
)

var (
	isbn10Pattern = regexp.MustCompile(`^[0-9]{10}$`)
	isbn13Pattern = regexp.MustCompile(`^[0-9]{13}$`)
)

// Draft holds the fields of a book input that passed sanitization. Pointer
// and slice fields distinguish "absent" from "empty", so a partial update
// built from a Draft can never overwrite a stored value with a zero one.
type Draft struct {
	ID          model.ID
	OwnerID     model.ID
	Title       *string
	Authors     []string
	Genres      []string
	Description *string
	ISBN10      *string
	ISBN13      *string
}

// Book filters an untrusted input object down to its valid book fields.
//
// Rules, per field:
//   - title, description: non-empty string, copied as-is
//   - authors, genres: list of strings with non-string entries filtered out;
//     a lone string is coerced to a single-element list; a list that filters
//     down to nothing is omitted entirely
//   - isbn_10 / isbn_13: exactly 10 / 13 digits, otherwise dropped silently
//   - _id / owner_id: external hex form converted to a record reference,
//     malformed values dropped
//
// Unrecognized keys are ignored. Returns nil when input is nil or when no
// field survives; callers must treat nil as "no valid data supplied", not as
// a valid empty record.
func Book(input map[string]any) *Draft {
	if input == nil {
		return nil
	}

	d := &Draft{}
	valid := 0

	if raw, ok := input["_id"]; ok {
		if id, ok := asID("book", raw); ok {
			d.ID = id
			valid++
		}
	}
	if raw, ok := input["owner_id"]; ok {
		if id, ok := asID("user", raw); ok {
			d.OwnerID = id
			valid++
		}
	}
	if s, ok := input["title"].(string); ok && s != "" {
		d.Title = &s
		valid++
	}
	if list, ok := stringList(input["authors"]); ok {
		d.Authors = list
		valid++
	}
	if list, ok := stringList(input["genres"]); ok {
		d.Genres = list
		valid++
	}
	if s, ok := input["description"].(string); ok && s != "" {
		d.Description = &s
		valid++
	}
	if s, ok := input["isbn_10"].(string); ok && isbn10Pattern.MatchString(s) {
		d.ISBN10 = &s
		valid++
	}
	if s, ok := input["isbn_13"].(string); ok && isbn13Pattern.MatchString(s) {
		d.ISBN13 = &s
		valid++
	}

	if valid == 0 {
		return nil
	}
	return d
}

// SetMap returns the draft's fields as a partial update document. Identity
// fields are never included: _id is immutable and owner reassignment goes
// through its own explicitly authorized path.
func (d *Draft) SetMap() map[string]any {
	set := map[string]any{}
	if d.Title != nil {
		set["title"] = *d.Title
	}
	if d.Authors != nil {
		set["authors"] = d.Authors
	}
	if d.Genres != nil {
		set["genres"] = d.Genres
	}
	if d.Description != nil {
		set["description"] = *d.Description
	}
	if d.ISBN10 != nil {
		set["isbn_10"] = *d.ISBN10
	}
	if d.ISBN13 != nil {
		set["isbn_13"] = *d.ISBN13
	}
	return set
}

// HasRequired reports whether the draft carries both fields a book must have
// to be persisted.
func (d *Draft) HasRequired() bool {
	return d.Title != nil && len(d.Authors) > 0
}

// stringList validates a list-of-strings field. A lone string is accepted as
// a single-element list. Non-string entries are filtered out; if nothing
// survives the filter, the field is treated as absent.
func stringList(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil, false
		}
		return []string{v}, true
	case []string:
		if len(v) == 0 {
			return nil, false
		}
		return append([]string(nil), v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	}
	return nil, false
}

func asID(table string, raw any) (model.ID, bool) {
	switch v := raw.(type) {
	case model.ID:
		return model.ParseID(table, v.String())
	case string:
		return model.ParseID(table, v)
	}
	return "", false
}
