package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel conditions reported by SearchBackend implementations
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
)

// BackendError represents a backend response that is neither success nor one
// of the sentinel conditions
type BackendError struct {
	Op     string
	Status int
	Reason string
}

func (e *BackendError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.Status, e.Reason)
}

// ErrorKind classifies failures surfaced to API callers
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindServerDown
	KindOwnerNotFound
	KindResourceNotFound
	KindResourceExists
	KindDocumentNotFound
	KindBadDataRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindServerDown:
		return "ServerDown"
	case KindOwnerNotFound:
		return "OwnerNotFound"
	case KindResourceNotFound:
		return "ResourceNotFound"
	case KindResourceExists:
		return "ResourceExists"
	case KindDocumentNotFound:
		return "DocumentNotFound"
	case KindBadDataRequest:
		return "BadDataRequest"
	default:
		return "Unknown"
	}
}

// Error is a classified service error. Noun names what Subject refers to
// ("application", "index", "user", "genre", "document").
type Error struct {
	Kind    ErrorKind
	Noun    string
	Subject string
	Err     error
}

// Message returns the text shown to API callers
func (e *Error) Message() string {
	switch e.Kind {
	case KindServerDown:
		return "search server is down"
	case KindOwnerNotFound, KindResourceNotFound, KindDocumentNotFound:
		return fmt.Sprintf("%s '%s' not found", e.Noun, e.Subject)
	case KindResourceExists:
		return fmt.Sprintf("%s '%s' already exists", e.Noun, e.Subject)
	case KindBadDataRequest:
		if e.Subject != "" {
			return "bad data request: " + e.Subject
		}
		return "bad data request"
	default:
		return "unknown error"
	}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message() + ": " + e.Err.Error()
	}
	return e.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: KindResourceExists}) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Status maps the error kind to an HTTP status code
func (e *Error) Status() int {
	switch e.Kind {
	case KindServerDown:
		return http.StatusServiceUnavailable
	case KindOwnerNotFound, KindResourceNotFound, KindDocumentNotFound:
		return http.StatusNotFound
	case KindResourceExists:
		return http.StatusConflict
	case KindBadDataRequest:
		return http.StatusBadRequest
	}
	var be *BackendError
	if errors.As(e.Err, &be) && be.Status >= 500 {
		return be.Status
	}
	return http.StatusInternalServerError
}

func ServerDown(err error) *Error {
	return &Error{Kind: KindServerDown, Err: err}
}

func OwnerNotFound(noun, owner string) *Error {
	return &Error{Kind: KindOwnerNotFound, Noun: noun, Subject: owner}
}

func ResourceNotFound(noun, name string) *Error {
	return &Error{Kind: KindResourceNotFound, Noun: noun, Subject: name}
}

func ResourceExists(noun, name string) *Error {
	return &Error{Kind: KindResourceExists, Noun: noun, Subject: name}
}

func DocumentNotFound(id string) *Error {
	return &Error{Kind: KindDocumentNotFound, Noun: "document", Subject: id}
}

func BadDataRequest(detail string, err error) *Error {
	return &Error{Kind: KindBadDataRequest, Subject: detail, Err: err}
}

func Unknown(err error) *Error {
	return &Error{Kind: KindUnknown, Err: err}
}

// KindOf returns the kind of a classified error, KindUnknown otherwise
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
