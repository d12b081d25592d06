// errors.go

// Package apperr defines the error types shared by the shop services.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrUnauthenticated is returned when the identity assertion is absent or invalid.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when the caller lacks the role or ownership required.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by login for an unknown email and a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError is returned when input is missing required fields or carries an invalid value.
type ValidationError struct {
	Missing []string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required fields: " + strings.Join(e.Missing, ", ")
	}
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s not found: id=%s", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ConflictError is returned on uniqueness violations.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

func (e *ConflictError) Is(target error) bool {
	_, ok := target.(*ConflictError)
	return ok
}

func Missing(fields ...string) error {
	return &ValidationError{Missing: fields}
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func NotFound(entity string, id primitive.ObjectID) error {
	return &NotFoundError{Entity: entity, ID: id.Hex()}
}

func NotFoundRaw(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// ParseID converts a hex id coming from a client into an ObjectID.
// Malformed ids cannot match any document and are reported as not found.
func ParseID(entity, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, NotFoundRaw(entity, hex)
	}
	return id, nil
}
