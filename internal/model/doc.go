// Package model defines the domain records for the book storage API.
//
// The three entities are User, Book and Library. Users own books and
// libraries; libraries hold non-owning references to books (a book may appear
// in many libraries, at most once per library).
//
// # Identifiers
//
// Entity IDs travel externally as 32-character hex strings and internally as
// "table:hex" record references (the ID type). ParseID is the only way
// external input becomes a reference; it rejects malformed strings instead of
// panicking, so callers can surface an invalid-object failure.
//
// # Error model
//
// ProblemDetails carries an RFC 9457 payload plus a numeric ErrorCode in the
// 800 range identifying the failure kind (unauthorized, duplicate, not found,
// invalid format, missing data). Handlers build ProblemDetails from service
// errors; services themselves return plain sentinel errors.
package model
