// Package apierror defines the closed error taxonomy shared by the API
// bindings, the auth gateway, and the request pipeline. Callers switch on
// Kind rather than inspecting response shapes.
package apierror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a failed remote operation.
type Kind int

const (
	// KindUnexpected covers anything unclassified, including malformed responses.
	KindUnexpected Kind = iota
	// KindCredential means a login was rejected (bad username/password).
	KindCredential
	// KindValidation means a registration was rejected with per-field messages.
	KindValidation
	// KindNetwork means no response was received (transport failure or timeout).
	KindNetwork
	// KindRefresh means the refresh token was invalid or expired.
	KindRefresh
)

func (k Kind) String() string {
	switch k {
	case KindCredential:
		return "credential"
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindRefresh:
		return "refresh"
	default:
		return "unexpected"
	}
}

// Error carries a classification, a human-readable message suitable for
// direct display, and for validation failures the per-field messages.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a classified error with a display message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error, keeping it reachable via errors.Is/As.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

// Validation builds a validation error from per-field messages. The display
// message flattens fields in sorted order so it is stable for assertions
// and re-renders.
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: FlattenFields(fields), Fields: fields}
}

// KindOf extracts the Kind from an error chain, defaulting to KindUnexpected.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnexpected
}

// IsKind reports whether the error chain contains an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// FlattenFields renders a field-error map as "field: msg msg; field: msg".
func FlattenFields(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(fields[name], " ")))
	}
	return strings.Join(parts, "; ")
}
