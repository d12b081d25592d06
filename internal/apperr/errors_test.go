// errors_test.go

package apperr

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTypedErrorsSurviveWrapping(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", Missing("title", "price"), IsValidation},
		{"invalid field", Invalid("price", "must be >= 0"), IsValidation},
		{"not found", NotFound("product", primitive.NewObjectID()), IsNotFound},
		{"conflict", Conflict("email already registered"), IsConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("op: %w", tc.err)
			if !tc.check(wrapped) {
				t.Fatalf("expected %T to be detected through wrapping", tc.err)
			}
		})
	}
}

func TestIsMatchesByType(t *testing.T) {
	err := fmt.Errorf("x: %w", NotFoundRaw("cart", "abc"))
	if !errors.Is(err, &NotFoundError{}) {
		t.Fatalf("errors.Is should match any NotFoundError")
	}
	if errors.Is(err, &ConflictError{}) {
		t.Fatalf("NotFoundError must not match ConflictError")
	}
}

func TestValidationMessage(t *testing.T) {
	if got := Missing("title", "code").Error(); got != "missing required fields: title, code" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Invalid("stock", "must be a number >= 0").Error(); got != "invalid field stock: must be a number >= 0" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestParseID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := ParseID("product", id.Hex())
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (%v)", id.Hex(), got.Hex(), err)
	}
	if _, err := ParseID("product", "not-an-id"); !IsNotFound(err) {
		t.Fatalf("expected NotFound for malformed id, got %v", err)
	}
}
