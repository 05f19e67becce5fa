// Package errors provides the structured error type shared by the engine,
// the store and the CLI. An Error records the operation that failed and a
// Kind callers can branch on.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.Function".
type Op string

// Kind categorizes an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindIO
	KindConfig
	KindMount
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindIO:
		return "I/O error"
	case KindConfig:
		return "configuration error"
	case KindMount:
		return "mount error"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for the workbench.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments may be an Op, a Kind, a string (context)
// or an error, in any order.
func E(args ...any) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of err, or KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As is errors.As, re-exported so callers need only one errors import.
func As(err error, target any) bool { return errors.As(err, target) }

// Layout errors

func LayoutInvalid(op Op, err error) error {
	return E(op, KindInvalid, err)
}

func PanelExists(id string) error {
	return E(Op("dock.CreatePanel"), KindInvalid, fmt.Sprintf("panel %q already exists", id))
}

func GroupNotFound(op Op, id string) error {
	return E(op, KindNotFound, fmt.Sprintf("group %q not found", id))
}

func PanelNotFound(op Op, id string) error {
	return E(op, KindNotFound, fmt.Sprintf("panel %q not found", id))
}

// Store errors

func StoreOpenFailed(path string, err error) error {
	return E(Op("store.Open"), KindIO, fmt.Sprintf("failed to open state store %s", path), err)
}

func LayoutNotFound(workspace string) error {
	return E(Op("store.LoadLayout"), KindNotFound, fmt.Sprintf("no layout stored for workspace %s", workspace))
}

// Config errors

func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalid, reason)
}
