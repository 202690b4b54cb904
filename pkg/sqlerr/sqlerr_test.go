package sqlerr

import (
	"errors"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{SQL, "SQL"},
		{Schema, "Schema"},
		{ColumnNotFound, "ColumnNotFound"},
		{Null, "Null"},
		{IndexOutOfBounds, "IndexOutOfBounds"},
		{Type, "Type"},
		{IO, "IO"},
		{Kind(999), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestNewFormatsMessage(t *testing.T) {
	err := New(ColumnNotFound, "column %q not found", "foo")
	if err.Kind != ColumnNotFound {
		t.Errorf("Kind = %v, want ColumnNotFound", err.Kind)
	}
	want := `ColumnNotFound: column "foo" not found`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Cause != nil {
		t.Error("expected nil Cause from New")
	}
}

func TestWrapIncludesCauseAndUnwraps(t *testing.T) {
	cause := errors.New("underlying failure")
	err := Wrap(IO, cause, "export failed")
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	want := "IO: export failed: underlying failure"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorsAsMatchesType(t *testing.T) {
	var target *Error
	err := New(Null, "column id is not nullable")
	if !errors.As(err, &target) {
		t.Fatal("errors.As should match *Error")
	}
	if target.Kind != Null {
		t.Errorf("target.Kind = %v, want Null", target.Kind)
	}
}
