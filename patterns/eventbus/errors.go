package eventbus

import (
	"errors"
	"fmt"
)

var (
	ErrConstruct    = errors.New("failed to construct handler")
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerError reports a handler that couldn't be constructed or that panicked while handling an event.
// It wraps either [ErrConstruct] or [ErrHandlerPanic], so both [errors.Is] and [errors.As] work with it.
type HandlerError struct {
	EventKind   string // Name of the event type being published.
	HandlerKind string // Name of the handler type that failed.
	Err         error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s failed on %s: %v", e.HandlerKind, e.EventKind, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
