package column

import (
	"errors"
	"fmt"
)

// Code classifies store failures so callers can react without inspecting
// error messages.
type Code int

const (
	CodeUnknown Code = iota
	// CodeNamespaceMissing: the namespace was never provisioned.
	CodeNamespaceMissing
	// CodeLayoutMismatch: a standard operation on a super namespace or vice
	// versa, or re-provisioning with a different layout.
	CodeLayoutMismatch
	// CodeInvalidArgument: empty names or malformed paths.
	CodeInvalidArgument
	// CodeUnavailable: the underlying storage failed.
	CodeUnavailable
)

func (c Code) String() string {
	switch c {
	case CodeNamespaceMissing:
		return "namespace_missing"
	case CodeLayoutMismatch:
		return "layout_mismatch"
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Error is returned by every store operation that fails.
type Error struct {
	Code      Code
	Op        string
	Namespace string
	Err       error
}

func (e *Error) Error() string {
	if e.Namespace == "" {
		return fmt.Sprintf("column: %s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("column: %s %s: %s: %v", e.Op, e.Namespace, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a typed store error. Backends outside this package use it
// so callers can classify their failures with CodeOf.
func NewError(code Code, op, namespace string, err error) error {
	return &Error{Code: code, Op: op, Namespace: namespace, Err: err}
}

// CodeOf returns the Code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsNamespaceMissing reports whether err was caused by an unprovisioned
// namespace.
func IsNamespaceMissing(err error) bool {
	return CodeOf(err) == CodeNamespaceMissing
}

var (
	// ErrNotProvisioned is the cause carried by CodeNamespaceMissing errors.
	ErrNotProvisioned = errors.New("namespace not provisioned")

	errEmptyNamespace = errors.New("empty namespace name")
	errEmptyRow       = errors.New("empty row key")
)

func errUnknownLayout(l Layout) error {
	return fmt.Errorf("unknown layout %q", l)
}

// CheckLayout validates that def has the layout an operation requires.
func CheckLayout(op string, def NamespaceDef, want Layout) error {
	if def.Layout != want {
		return NewError(CodeLayoutMismatch, op, def.Name, fmt.Errorf("%s operation on %s namespace", want, def.Layout))
	}
	return nil
}

// CheckRow validates the namespace and row arguments shared by every
// operation.
func CheckRow(op, namespace, row string) error {
	if namespace == "" {
		return NewError(CodeInvalidArgument, op, namespace, errEmptyNamespace)
	}
	if row == "" {
		return NewError(CodeInvalidArgument, op, namespace, errEmptyRow)
	}
	return nil
}

// MissingNamespace returns the CodeNamespaceMissing error for namespace.
func MissingNamespace(op, namespace string) error {
	return NewError(CodeNamespaceMissing, op, namespace, ErrNotProvisioned)
}
