package rangingsensor

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInit     = errors.New("ranging sensor init failed")
	ErrStart    = errors.New("ranging sensor start failed")
	ErrNotReady = errors.New("no new measurement ready")
	ErrDevice   = errors.New("ranging sensor device error")
	ErrBadState = errors.New("operation not allowed in current session state")

	ErrInvalidProfile      = errors.New("invalid ranging profile")
	ErrInvalidTimingBudget = errors.New("invalid timing budget")
	ErrUnsupportedProfile  = errors.New("ranging profile not supported by device")
)

// InitError means the device could not be acquired. It is fatal.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInit, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

func (e *InitError) Is(target error) bool { return target == ErrInit }

// StartError means continuous ranging could not be started. It is fatal.
type StartError struct {
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("%v: %v", ErrStart, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

func (e *StartError) Is(target error) bool { return target == ErrStart }

type FetchKind int

const (
	FetchNotReady FetchKind = iota + 1
	FetchDevice
)

// FetchError is returned by Session.Fetch. Neither kind is fatal; the caller skips the cycle.
type FetchError struct {
	Kind FetchKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchNotReady {
		return ErrNotReady.Error()
	}
	return fmt.Sprintf("%v: %v", ErrDevice, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool {
	switch e.Kind {
	case FetchNotReady:
		return target == ErrNotReady
	case FetchDevice:
		return target == ErrDevice
	}
	return false
}
