package service

import (
	"context"
	"sort"
	"strings"

	"github.com/shelfstack/api/internal/model"
	"github.com/shelfstack/api/internal/repository"
)

// Map-backed mock repositories shared by the service tests.

type mockUserRepo struct {
	users     map[model.ID]*model.User
	libraries *mockLibraryRepo // Receives starter libraries when set
	createErr error
	getErr    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[model.ID]*model.User)}
}

func (m *mockUserRepo) add(user *model.User) *model.User {
	m.users[user.ID] = user
	return user
}

func (m *mockUserRepo) CreateWithDefaultLibrary(ctx context.Context, user *model.User, library *model.Library) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.users[user.ID] = user
	if m.libraries != nil {
		m.libraries.libraries[library.ID] = library
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id model.ID) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.users[id], nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	out := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id model.ID) (int, error) {
	if _, ok := m.users[id]; !ok {
		return 0, nil
	}
	delete(m.users, id)
	return 1, nil
}

type mockBookRepo struct {
	books     map[model.ID]*model.Book
	createErr error
}

func newMockBookRepo() *mockBookRepo {
	return &mockBookRepo{books: make(map[model.ID]*model.Book)}
}

func (m *mockBookRepo) add(book *model.Book) *model.Book {
	m.books[book.ID] = book
	return book
}

func (m *mockBookRepo) Create(ctx context.Context, book *model.Book) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.books[book.ID] = book
	return nil
}

func (m *mockBookRepo) GetByID(ctx context.Context, id model.ID) (*model.Book, error) {
	return m.books[id], nil
}

func (m *mockBookRepo) GetByIDs(ctx context.Context, ids []model.ID) ([]*model.Book, error) {
	out := []*model.Book{}
	for _, id := range ids {
		if b, ok := m.books[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookRepo) List(ctx context.Context, opts repository.ListOptions) ([]*model.Book, error) {
	out := make([]*model.Book, 0, len(m.books))
	for _, b := range m.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if opts.Ascending {
			return out[i].Title < out[j].Title
		}
		return out[i].Title > out[j].Title
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *mockBookRepo) Search(ctx context.Context, term string) ([]*model.Book, error) {
	out := []*model.Book{}
	for _, b := range m.books {
		if b.Matches(term) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookRepo) Update(ctx context.Context, id model.ID, set map[string]interface{}) (int, error) {
	book, ok := m.books[id]
	if !ok {
		return 0, nil
	}
	modified := 0
	apply := func(current *string, key string) {
		if v, ok := set[key].(string); ok && v != *current {
			*current = v
			modified = 1
		}
	}
	apply(&book.Title, "title")
	apply(&book.Description, "description")
	apply(&book.ISBN10, "isbn_10")
	apply(&book.ISBN13, "isbn_13")
	if v, ok := set["authors"].([]string); ok && strings.Join(v, "|") != strings.Join(book.Authors, "|") {
		book.Authors = v
		modified = 1
	}
	if v, ok := set["genres"].([]string); ok && strings.Join(v, "|") != strings.Join(book.Genres, "|") {
		book.Genres = v
		modified = 1
	}
	return modified, nil
}

func (m *mockBookRepo) SetOwner(ctx context.Context, id, ownerID model.ID) (int, error) {
	book, ok := m.books[id]
	if !ok || book.OwnerID == ownerID {
		return 0, nil
	}
	book.OwnerID = ownerID
	return 1, nil
}

func (m *mockBookRepo) Delete(ctx context.Context, id model.ID) (int, error) {
	if _, ok := m.books[id]; !ok {
		return 0, nil
	}
	delete(m.books, id)
	return 1, nil
}

func (m *mockBookRepo) DeleteByOwner(ctx context.Context, ownerID model.ID) ([]model.ID, error) {
	var removed []model.ID
	for id, b := range m.books {
		if b.OwnerID == ownerID {
			removed = append(removed, id)
			delete(m.books, id)
		}
	}
	return removed, nil
}

func (m *mockBookRepo) ISBNInUse(ctx context.Context, isbn10, isbn13 string, exclude model.ID) (bool, error) {
	for id, b := range m.books {
		if id == exclude {
			continue
		}
		if (isbn10 != "" && b.ISBN10 == isbn10) || (isbn13 != "" && b.ISBN13 == isbn13) {
			return true, nil
		}
	}
	return false, nil
}

type mockLibraryRepo struct {
	libraries map[model.ID]*model.Library
}

func newMockLibraryRepo() *mockLibraryRepo {
	return &mockLibraryRepo{libraries: make(map[model.ID]*model.Library)}
}

func (m *mockLibraryRepo) add(library *model.Library) *model.Library {
	m.libraries[library.ID] = library
	return library
}

func (m *mockLibraryRepo) Create(ctx context.Context, library *model.Library) error {
	m.libraries[library.ID] = library
	return nil
}

func (m *mockLibraryRepo) GetByID(ctx context.Context, id model.ID) (*model.Library, error) {
	return m.libraries[id], nil
}

func (m *mockLibraryRepo) ListByOwner(ctx context.Context, ownerID model.ID) ([]*model.Library, error) {
	out := []*model.Library{}
	for _, l := range m.libraries {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *mockLibraryRepo) UpdateMeta(ctx context.Context, id model.ID, set map[string]interface{}) (int, error) {
	library, ok := m.libraries[id]
	if !ok {
		return 0, nil
	}
	modified := 0
	if v, ok := set["title"].(string); ok && v != library.Title {
		library.Title = v
		modified = 1
	}
	if v, ok := set["description"].(string); ok && v != library.Description {
		library.Description = v
		modified = 1
	}
	return modified, nil
}

func (m *mockLibraryRepo) Delete(ctx context.Context, id model.ID) (int, error) {
	if _, ok := m.libraries[id]; !ok {
		return 0, nil
	}
	delete(m.libraries, id)
	return 1, nil
}

func (m *mockLibraryRepo) DeleteByOwner(ctx context.Context, ownerID model.ID) (int, error) {
	count := 0
	for id, l := range m.libraries {
		if l.OwnerID == ownerID {
			delete(m.libraries, id)
			count++
		}
	}
	return count, nil
}

func (m *mockLibraryRepo) AddBook(ctx context.Context, id, bookID model.ID) (int, error) {
	library, ok := m.libraries[id]
	if !ok || library.Contains(bookID) {
		return 0, nil
	}
	library.BookIDs = append(library.BookIDs, bookID)
	return 1, nil
}

func (m *mockLibraryRepo) RemoveBook(ctx context.Context, id, bookID model.ID) (int, error) {
	library, ok := m.libraries[id]
	if !ok || !library.Contains(bookID) {
		return 0, nil
	}
	kept := library.BookIDs[:0]
	for _, b := range library.BookIDs {
		if b != bookID {
			kept = append(kept, b)
		}
	}
	library.BookIDs = kept
	return 1, nil
}

func (m *mockLibraryRepo) RemoveBookFromAll(ctx context.Context, bookID model.ID) (int, int, error) {
	matched, modified := 0, 0
	for id, l := range m.libraries {
		if l.Contains(bookID) {
			matched++
			if n, _ := m.RemoveBook(ctx, id, bookID); n > 0 {
				modified++
			}
		}
	}
	return matched, modified, nil
}
