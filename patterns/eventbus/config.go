package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrInvalidConfig = errors.New("invalid event bus configuration")
)

// FailurePolicy decides what happens to the rest of a dispatch when one handler fails.
type FailurePolicy int

const (
	// FailFast stops dispatching at the first handler failure and returns it from [Publish].
	// Handlers registered after the failed one don't see the event.
	FailFast FailurePolicy = iota
	// Isolate keeps dispatching after a handler fails, and [Publish] returns all failures joined together.
	Isolate
)

func (p FailurePolicy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case Isolate:
		return "isolate"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

type busConf struct {
	logger *slog.Logger
	policy FailurePolicy
}

func defaultConf() busConf {
	return busConf{
		logger: slog.Default(),
		policy: FailFast,
	}
}

// ConfigFunc sets an option on an [EventBus] under construction.
type ConfigFunc func(conf *busConf) error

// WithLogger sets the logger used for informational bus messages like duplicate subscriptions.
// Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) ConfigFunc {
	return func(conf *busConf) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidConfig)
		}
		conf.logger = logger
		return nil
	}
}

// WithFailurePolicy sets how [Publish] reacts to a failing handler. Defaults to [FailFast].
func WithFailurePolicy(policy FailurePolicy) ConfigFunc {
	return func(conf *busConf) error {
		switch policy {
		case FailFast, Isolate:
			conf.policy = policy
			return nil
		default:
			return fmt.Errorf("%w: unknown failure policy %s", ErrInvalidConfig, policy)
		}
	}
}
