package clienterr

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestIsKind_ThroughWrapping(t *testing.T) {
	base := Wrap(KindConfiguration, "rpc.NewTLS", "read root CA /nope", os.ErrNotExist)
	wrapped := fmt.Errorf("open client: %w", base)

	if !IsKind(wrapped, KindConfiguration) {
		t.Fatalf("expected KindConfiguration through fmt wrapping")
	}
	if IsKind(wrapped, KindTransport) {
		t.Fatalf("unexpected KindTransport")
	}
	if !errors.Is(wrapped, os.ErrNotExist) {
		t.Fatalf("cause must stay reachable via errors.Is")
	}
	if got := KindOf(wrapped); got != KindConfiguration {
		t.Fatalf("KindOf: got %q", got)
	}
}

func TestError_MessageCarriesContext(t *testing.T) {
	err := New(KindTypeMismatch, "attribute_type.as_long", "handle \"name\" has value kind string")
	msg := err.Error()
	for _, want := range []string{"attribute_type.as_long", "TypeMismatch", "string"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestKindOf_Plain(t *testing.T) {
	if got := KindOf(errors.New("x")); got != "" {
		t.Fatalf("expected empty kind, got %q", got)
	}
	var e *Error
	if e.Error() != "<nil>" || e.Unwrap() != nil {
		t.Fatalf("nil receiver handling")
	}
}
