package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrAlreadyUsed      = errors.New("donation already used")
	ErrAlreadyFulfilled = errors.New("request already fulfilled")
	ErrValidation       = errors.New("validation failed")
	ErrBackingStore     = errors.New("backing store failure")
)

// NotFoundError names the entity and keys that could not be resolved.
type NotFoundError struct {
	Entity string
	Keys   []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, strings.Join(e.Keys, ", "), ErrNotFound)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError for a single key.
func NotFound(entity string, key any) error {
	return &NotFoundError{Entity: entity, Keys: []string{fmt.Sprint(key)}}
}

// DonationsNotFound reports every missing donation id at once.
func DonationsNotFound(ids []int64) error {
	return &NotFoundError{Entity: "donation", Keys: formatIDs(ids)}
}

// AlreadyUsedError lists donations whose usedBy was already set.
type AlreadyUsedError struct {
	DonationIDs []int64
}

func (e *AlreadyUsedError) Error() string {
	return fmt.Sprintf("donation %s: %s", strings.Join(formatIDs(e.DonationIDs), ", "), ErrAlreadyUsed)
}

func (e *AlreadyUsedError) Is(target error) bool { return target == ErrAlreadyUsed }

// ValidationError describes malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is shorthand for a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError wraps a connectivity or transient failure of a backing store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrBackingStore, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrBackingStore }

func formatIDs(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out
}
