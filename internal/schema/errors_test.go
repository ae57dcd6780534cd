package schema

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"direct", &Error{Kind: KindTransport}, KindTransport},
		{"wrapped", fmt.Errorf("failed to probe: %w", &Error{Kind: KindNotFound, Message: "no such table"}), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &Error{Kind: KindNotFound, Code: "42P01", Message: "relation missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound)")
	}
	if errors.Is(err, ErrTransport) {
		t.Error("did not expect errors.Is(err, ErrTransport)")
	}
	if !IsNotFound(err) {
		t.Error("expected IsNotFound")
	}
}

func TestErrorText(t *testing.T) {
	e := &Error{Kind: KindQuery, Message: "m", Hint: "h", Details: "d"}
	if got := e.Text(); got != "m\nd\nh" {
		t.Errorf("Text() = %q", got)
	}
	if got := e.Error(); got != "query: m; details: d; hint: h" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := &Error{Kind: KindTransport, Err: errors.New("dial tcp: refused")}
	if got := wrapped.Error(); got != "transport: dial tcp: refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(wrapped, wrapped.Err) {
		t.Error("expected Unwrap to expose the cause")
	}
}
