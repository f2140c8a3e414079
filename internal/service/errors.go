// Package service implements the business logic of the book storage API:
// account management, book and library operations, validation and
// authorization. Services depend on repository interfaces and return
// sentinel errors; translating them into HTTP responses happens in the
// handler layer.
package service

import "errors"

// Sentinel errors returned by the services. Handlers map these onto problem
// responses; check with errors.Is.
var (
	// Identity
	ErrInvalidUsername    = errors.New("username must be 3-64 word characters")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrInvalidPassword    = errors.New("password must be 8-128 characters with at least one letter and one digit")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUserID      = errors.New("invalid user id")

	// Tokens
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Books
	ErrInvalidBookID      = errors.New("invalid book id")
	ErrBookNotFound       = errors.New("book not found")
	ErrNoBooks            = errors.New("no books found")
	ErrNoBookData         = errors.New("no valid book data supplied")
	ErrMissingBookData    = errors.New("book requires a title and at least one author")
	ErrNoValidUpdates     = errors.New("no valid update fields supplied")
	ErrNoUpdatesProcessed = errors.New("no records were updated")
	ErrNothingDeleted     = errors.New("no records were deleted")
	ErrDuplicateISBN      = errors.New("a book with this ISBN already exists")
	ErrInvalidLimit       = errors.New("limit must not be negative")
	ErrInvalidSearchTerm  = errors.New("search term must not be empty")

	// Libraries
	ErrInvalidLibraryID = errors.New("invalid library id")
	ErrLibraryNotFound  = errors.New("library not found")
	ErrAlreadyInLibrary = errors.New("book already in library")

	// Authorization
	ErrNotOwner = errors.New("operation requires ownership or admin level")
)
