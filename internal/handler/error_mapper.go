package handler

import (
	"errors"

	"github.com/shelfstack/api/internal/model"
	"github.com/shelfstack/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling so every handler maps the same sentinel to
// the same status and error code.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authentication → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization → 403 =====
	case errors.Is(err, service.ErrNotOwner):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrBookNotFound):
		return model.NewNotFoundError("book")
	case errors.Is(err, service.ErrLibraryNotFound):
		return model.NewNotFoundError("library")
	case errors.Is(err, service.ErrNoBooks):
		return model.NewNotFoundError("books")

	// ===== Zero-effect mutations → 500 =====
	// A mutation that matched a record but changed nothing is an Unknown
	// failure on the wire, not a lookup miss.
	case errors.Is(err, service.ErrNoUpdatesProcessed),
		errors.Is(err, service.ErrNothingDeleted):
		return model.NewInternalError(err.Error())

	// ===== Conflicts → 409 =====
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrDuplicateISBN),
		errors.Is(err, service.ErrAlreadyInLibrary):
		return model.NewDuplicateError(err.Error())

	// ===== Malformed references → 400 =====
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidBookID),
		errors.Is(err, service.ErrInvalidLibraryID):
		return model.NewInvalidObjectError(err.Error())

	// ===== Input validation → 422 =====
	case errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrNoBookData),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidSearchTerm):
		return model.NewInvalidFormatError(err.Error())
	case errors.Is(err, service.ErrMissingBookData),
		errors.Is(err, service.ErrNoValidUpdates):
		return model.NewMissingDataError(err.Error())

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}
