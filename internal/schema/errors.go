package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure so callers can tell "the table doesn't exist"
// from "the store is unreachable" from "found it but couldn't read its shape".
type Kind int

const (
	// KindUnknown is the zero Kind; KindOf returns it for unclassified errors.
	KindUnknown Kind = iota
	// KindNotFound means the table or relation does not exist.
	KindNotFound
	// KindTransport covers connectivity and authentication failures.
	KindTransport
	// KindAmbiguous means column discovery produced nothing usable.
	KindAmbiguous
	// KindMalformed means a record lacked a field the operation requires.
	KindMalformed
	// KindQuery is any other structured rejection from the store.
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindAmbiguous:
		return "ambiguous"
	case KindMalformed:
		return "malformed"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is a classified store or probe failure. Message, Hint and Details
// carry whatever diagnostic text the backend returned.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Hint    string
	Details string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	b.WriteString(": ")
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	}
	if e.Details != "" {
		fmt.Fprintf(&b, "; details: %s", e.Details)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, "; hint: %s", e.Hint)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same Kind, so errors.Is(err, ErrNotFound)
// works for any wrapped not-found failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Code == "" && t.Message == ""
}

// Text joins message, details and hint; this is the text column extractors parse.
func (e *Error) Text() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{e.Message, e.Details, e.Hint} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Sentinels for errors.Is.
var (
	ErrNotFound  = &Error{Kind: KindNotFound}
	ErrTransport = &Error{Kind: KindTransport}
	ErrAmbiguous = &Error{Kind: KindAmbiguous}
	ErrMalformed = &Error{Kind: KindMalformed}
)

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
