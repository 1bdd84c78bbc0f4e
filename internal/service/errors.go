package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cancerinfo/cms/internal/database"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateName      = errors.New("name already exists")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("token is invalid or expired")
)

// ValidationError carries per-field messages for a rejected write. It may
// wrap a sentinel such as ErrDuplicateName.
type ValidationError struct {
	Fields map[string][]string
	cause  error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Err returns e if any field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func duplicateName(entity string) error {
	return &ValidationError{
		Fields: map[string][]string{"name": {entity + " with this name already exists."}},
		cause:  ErrDuplicateName,
	}
}

func usernameTaken() error {
	return &ValidationError{
		Fields: map[string][]string{"username": {"A user with that username already exists."}},
		cause:  ErrUsernameTaken,
	}
}

// writeErr maps a failed insert or update. Unique violations that slipped
// past the pre-check (concurrent writers) become dup.
func writeErr(op string, err error, dup func() error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	if database.IsUniqueViolation(err) && dup != nil {
		return dup()
	}
	return fmt.Errorf("%s: %w", op, err)
}
