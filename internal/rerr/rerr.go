// Package rerr defines the runtime's stable error-kind taxonomy and an
// Error type that carries a Kind alongside the usual wrapped chain: a
// typed error with an Is method so callers can test
// errors.Is(err, rerr.ErrUnknownFile) regardless of how much context
// fmt.Errorf("%w", ...) has wrapped around it.
package rerr

import "fmt"

// Kind is one of the runtime's stable error kinds. Values are not reused
// or reordered; kind is part of the runtime's user-visible contract.
type Kind int

const (
	UnknownFile Kind = iota
	BadHandle
	AddrInUse
	MapConflict
	NotMapped
	AlreadyMapped
	OOMSram
	OOMDram
	OOMPrefetch
	NandBlockFull
	NandSpaceExhausted
	PermDenied
	AddrOutOfRange
	ConfigInvalid
)

// Error carries a stable Kind plus a human-readable message. Two Errors
// compare equal under errors.Is if their Kinds match, independent of
// message text — this lets handlers return rerr.New(rerr.UnknownFile, ...)
// with call-specific detail while callers still match on the sentinel.
type Error struct {
	Kind Kind
	Msg  string
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is reports whether target is an *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// Sentinels, one per Kind, for errors.Is matching: errors.Is(err,
// rerr.ErrUnknownFile).
var (
	ErrUnknownFile        = &Error{Kind: UnknownFile}
	ErrBadHandle          = &Error{Kind: BadHandle}
	ErrAddrInUse          = &Error{Kind: AddrInUse}
	ErrMapConflict        = &Error{Kind: MapConflict}
	ErrNotMapped          = &Error{Kind: NotMapped}
	ErrAlreadyMapped      = &Error{Kind: AlreadyMapped}
	ErrOOMSram            = &Error{Kind: OOMSram}
	ErrOOMDram            = &Error{Kind: OOMDram}
	ErrOOMPrefetch        = &Error{Kind: OOMPrefetch}
	ErrNandBlockFull      = &Error{Kind: NandBlockFull}
	ErrNandSpaceExhausted = &Error{Kind: NandSpaceExhausted}
	ErrPermDenied         = &Error{Kind: PermDenied}
	ErrAddrOutOfRange     = &Error{Kind: AddrOutOfRange}
	ErrConfigInvalid      = &Error{Kind: ConfigInvalid}
)
