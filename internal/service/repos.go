package service

import (
	"context"

	"github.com/shelfstack/api/internal/model"
	"github.com/shelfstack/api/internal/repository"
)

// UserRepository defines the user persistence operations the services need.
// Lookups return (nil, nil) when nothing matches.
type UserRepository interface {
	CreateWithDefaultLibrary(ctx context.Context, user *model.User, library *model.Library) error
	GetByID(ctx context.Context, id model.ID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Delete(ctx context.Context, id model.ID) (int, error)
}

// BookRepository defines the book persistence operations the services need.
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id model.ID) (*model.Book, error)
	GetByIDs(ctx context.Context, ids []model.ID) ([]*model.Book, error)
	List(ctx context.Context, opts repository.ListOptions) ([]*model.Book, error)
	Search(ctx context.Context, term string) ([]*model.Book, error)
	Update(ctx context.Context, id model.ID, set map[string]interface{}) (int, error)
	SetOwner(ctx context.Context, id, ownerID model.ID) (int, error)
	Delete(ctx context.Context, id model.ID) (int, error)
	DeleteByOwner(ctx context.Context, ownerID model.ID) ([]model.ID, error)
	ISBNInUse(ctx context.Context, isbn10, isbn13 string, exclude model.ID) (bool, error)
}

// LibraryRepository defines the library persistence operations the services
// need.
type LibraryRepository interface {
	Create(ctx context.Context, library *model.Library) error
	GetByID(ctx context.Context, id model.ID) (*model.Library, error)
	ListByOwner(ctx context.Context, ownerID model.ID) ([]*model.Library, error)
	UpdateMeta(ctx context.Context, id model.ID, set map[string]interface{}) (int, error)
	Delete(ctx context.Context, id model.ID) (int, error)
	DeleteByOwner(ctx context.Context, ownerID model.ID) (int, error)
	AddBook(ctx context.Context, id, bookID model.ID) (int, error)
	RemoveBook(ctx context.Context, id, bookID model.ID) (int, error)
	RemoveBookFromAll(ctx context.Context, bookID model.ID) (matched, modified int, err error)
}
