package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingPayload is returned when a mutation response resolves without
// the expected payload object. Callers must treat that as a hard failure,
// never as an empty result.
var ErrMissingPayload = errors.New("mutation response carried no payload")

// ErrBackendUnreachable wraps transport-level failures: the backend could
// not be reached or answered with a server error before producing a
// GraphQL envelope.
var ErrBackendUnreachable = errors.New("backend unreachable")

// Error codes the backend attaches under extensions.code. Domain
// validation failures are distinguished so the surface can render
// field-level feedback instead of a generic message.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeDomainValidation = "DOMAIN_VALIDATION"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

// Error is one entry of a GraphQL response's errors array.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Code returns the machine-readable code of the error, or an empty
// string when the backend attached none.
func (e *Error) Code() string {
	if e.Extensions == nil {
		return ""
	}
	code, _ := e.Extensions["code"].(string)
	return code
}

// ErrorList is a non-empty errors array surfaced as a single error value.
type ErrorList []*Error

func (l ErrorList) Error() string {
	if len(l) == 1 {
		return l[0].Message
	}
	parts := make([]string, 0, len(l))
	for _, entry := range l {
		parts = append(parts, entry.Message)
	}
	return fmt.Sprintf("%d errors: %s", len(l), strings.Join(parts, "; "))
}

// NotFound builds the error used when a requested entity has no matching
// record, mirroring the shape the backend itself produces.
func NotFound(message string) error {
	return &Error{
		Message:    message,
		Extensions: map[string]any{"code": CodeNotFound},
	}
}

// CodeOf digs the first machine-readable error code out of err, walking
// wrapped errors and error lists. Empty when err carries no code.
func CodeOf(err error) string {
	var list ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return list[0].Code()
	}
	var single *Error
	if errors.As(err, &single) {
		return single.Code()
	}
	return ""
}

// IsNotFound reports whether err means the requested entity has no
// matching record. Treated as a hard failure by callers, not a soft
// empty state.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
