package employee

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

var (
	ErrInvalidInput     = errors.New("employee: invalid input")
	ErrEmployeeNotFound = errors.New("employee: not found")
	ErrPersistence      = errors.New("employee: persistence failure")
)

// Kind は呼び出し元が分岐に使うエラー種別です。
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// KindOf は err のエラー種別を返します。err が nil の場合は KindUnknown です。
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrEmployeeNotFound):
		return KindNotFound
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindUnknown
	}
}

// FieldViolation はフィールド単位の制約違反です。
type FieldViolation struct {
	Field  string
	Reason string
}

// ValidationError は入力制約違反を表します。
// Field と Reason は最初の違反、Violations は検出されたすべての違反です。
type ValidationError struct {
	Field      string
	Reason     string
	Violations []FieldViolation
}

// NewValidationError は単一フィールドの ValidationError を生成します。
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{
		Field:      field,
		Reason:     reason,
		Violations: []FieldViolation{{Field: field, Reason: reason}},
	}
}

func (e *ValidationError) Error() string {
	if len(e.Violations) <= 1 {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidInput.Error(), e.Field, e.Reason)
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// PersistenceError は永続化層のインフラ障害を表します。
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence.Error(), e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
