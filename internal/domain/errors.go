package domain

import (
	"errors"
	"strings"
)

// GeneralErrorMessage is the fixed user-facing fallback when a remote
// fault carries no usable description of its own.
const GeneralErrorMessage = "Something went wrong. Please try again later."

// ErrGeneral is the catch-all remote failure.
var ErrGeneral = errors.New(GeneralErrorMessage)

// RemoteError carries the description of an underlying remote fault.
// The wrapped error stays reachable for errors.Is/As.
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error { return e.Err }

// WrapRemote maps a remote fault into the error taxonomy: the fault's own
// description when it has one, the fallback otherwise, ErrGeneral when
// even the fallback is empty. A nil error stays nil.
func WrapRemote(err error, fallback string) error {
	if err == nil {
		return nil
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = fallback
	}
	if msg == "" {
		return ErrGeneral
	}
	return &RemoteError{Message: msg, Err: err}
}
