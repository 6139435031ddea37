package handler

import (
	"errors"
	"net/http"

	"github.com/stevemurr/fake-server/store"
)

// Error is a failure reported to the client with a fixed status and message.
// Errors that are not an *Error, and do not wrap a store sentinel, surface as
// 500 Internal Server Error with their text as details.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	errNoBody           = &Error{Status: http.StatusBadRequest, Message: "No request body"}
	errNoID             = &Error{Status: http.StatusBadRequest, Message: "No ID provided"}
	errResourceNotFound = &Error{Status: http.StatusNotFound, Message: "Resource not found"}
	errItemNotFound     = &Error{Status: http.StatusNotFound, Message: "Item not found"}
	errMethodNotAllowed = &Error{Status: http.StatusMethodNotAllowed, Message: "Method not allowed"}
)

// classify maps err onto the client taxonomy. ok is false for internal errors.
func classify(err error) (*Error, bool) {
	var he *Error
	switch {
	case errors.As(err, &he):
		return he, true
	case errors.Is(err, store.ErrResourceNotFound):
		return errResourceNotFound, true
	case errors.Is(err, store.ErrItemNotFound):
		return errItemNotFound, true
	default:
		return nil, false
	}
}
