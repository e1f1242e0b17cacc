// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// depending on database/sql directly.
package repository

import "errors"

// ErrEventNotFound is returned when no event matches the given id or slug.
var ErrEventNotFound = errors.New("event not found")

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

// ErrConflict is returned when an insert or update collides with a unique
// key, such as a second event with the same slug or a duplicate room
// code within one event. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")
