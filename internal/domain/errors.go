package domain

import "errors"

// Kind classifies an error for the transport layer
type Kind int

const (
	KindInternal         Kind = iota // Unexpected failure
	KindNotAuthenticated             // No or invalid session
	KindForbidden                    // Authenticated but not allowed
	KindNotFound                     // Referenced record absent
	KindValidation                   // Malformed input
	KindPaymentDeclined              // Gateway rejected the charge
	KindConflict                     // Duplicate or concurrent state
)

// Error is a user-displayable error with a kind
type Error struct {
	Kind Kind   // Error category
	Msg  string // Message shown to the caller
	Err  error  // Underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches an *Error of the same kind, and of the same message when the target sets one
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func NotAuthenticated(msg string) error { return &Error{Kind: KindNotAuthenticated, Msg: msg} }
func Forbidden(msg string) error        { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error         { return &Error{Kind: KindNotFound, Msg: msg} }
func Validation(msg string) error       { return &Error{Kind: KindValidation, Msg: msg} }
func Conflict(msg string) error         { return &Error{Kind: KindConflict, Msg: msg} }

// PaymentDeclined wraps a gateway rejection
func PaymentDeclined(msg string, cause error) error {
	return &Error{Kind: KindPaymentDeclined, Msg: msg, Err: cause}
}

var (
	// ErrNotSignedIn is returned when an operation requires a session
	ErrNotSignedIn = &Error{Kind: KindNotAuthenticated, Msg: "You must be signed in!"}
	// ErrInvalidCredentials covers both unknown email and wrong password
	ErrInvalidCredentials = &Error{Kind: KindNotAuthenticated, Msg: "Invalid email or password!"}
	// ErrEmptyCart is returned by checkout when there is nothing to charge
	ErrEmptyCart = &Error{Kind: KindValidation, Msg: "Your cart is empty!"}
	// ErrCheckoutInProgress is returned when another checkout holds the user's lock
	ErrCheckoutInProgress = &Error{Kind: KindConflict, Msg: "A checkout is already in progress"}
	// ErrRecordNotFound is the store-level miss, mapped to NotFound by services
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicate is the store-level unique-constraint violation
	ErrDuplicate = errors.New("duplicate record")
	// ErrCartCleanup signals the order was persisted but its cart rows were not removed
	ErrCartCleanup = errors.New("cart cleanup failed")
)
