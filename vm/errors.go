package vm

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Fatal error taxonomy
// ---------------------------------------------------------------------------

// ErrorKind classifies a fatal interpreter error. The host maps kinds to
// process exit codes; the VM only needs to tell them apart.
type ErrorKind int

const (
	// KindInternal is a failure of the interpreter itself.
	KindInternal ErrorKind = iota
	// KindDoesNotUnderstand: no method and no attribute for a selector.
	KindDoesNotUnderstand
	// KindType: unknown class, unboxable value, wrong receiver shape.
	KindType
	// KindValue: malformed literal, division by zero, unresolved variable,
	// bad or missing argument to a native method.
	KindValue
	// KindMissingEntry: the entry class does not exist.
	KindMissingEntry
	// KindHierarchy: the class table contains an inheritance cycle.
	KindHierarchy
)

func (k ErrorKind) String() string {
	switch k {
	case KindDoesNotUnderstand:
		return "does not understand"
	case KindType:
		return "type error"
	case KindValue:
		return "value error"
	case KindMissingEntry:
		return "missing entry class"
	case KindHierarchy:
		return "invalid class hierarchy"
	default:
		return "internal error"
	}
}

// Error is a fatal interpreter error. The language has no handlers, so an
// Error always aborts the whole run.
type Error struct {
	Kind     ErrorKind
	Message  string
	Class    string // receiver class, when known
	Selector string // selector being sent, when known
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf classifies err. Errors that are not *Error are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ---------------------------------------------------------------------------
// Raising and recovering
// ---------------------------------------------------------------------------

func raise(kind ErrorKind, format string, args ...any) {
	panic(&Error{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func raiseDNU(class, selector string) {
	panic(&Error{
		Kind:     KindDoesNotUnderstand,
		Message:  fmt.Sprintf("%s does not understand #%s", class, selector),
		Class:    class,
		Selector: selector,
	})
}

// catch converts a recovered panic value into an error. Panics that did not
// originate from raise are reported as internal errors.
func catch(r any) error {
	switch e := r.(type) {
	case nil:
		return nil
	case *Error:
		return e
	case error:
		return &Error{Kind: KindInternal, Message: e.Error()}
	default:
		return &Error{Kind: KindInternal, Message: fmt.Sprint(e)}
	}
}
