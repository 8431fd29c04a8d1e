package eventbus

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/saylorsolutions/dayloop/structures/set"
	"github.com/saylorsolutions/dayloop/syncx"
)

// Handler is a handler kind that can process events of kind E.
// The handler kind is identified by its Go type, so *Logger and Logger are different kinds.
type Handler[E Event] interface {
	// Handle processes a single event. Any side effects, including further publishes, are the handler's business.
	Handle(evt E)
}

// Stopper may be implemented by a handler to free resources when its cached instance is evicted from the bus.
// Stop is never called while the bus is locked, so it may use the bus.
type Stopper interface {
	Stop()
}

// Factory constructs a handler instance the first time one is needed for dispatch.
type Factory[H any] func() (H, error)

// New is a [Factory] that allocates a zero value T, which is all many handlers need.
//
//	eventbus.Subscribe[DayEnded, *Counter](bus, eventbus.New[Counter])
func New[T any]() (*T, error) {
	return new(T), nil
}

var (
	instanceBus *EventBus
	initOnce    sync.Once
)

// InitInstance configures the global [EventBus] returned by [Instance].
// It returns false if the global instance was already created, in which case configFuncs are ignored.
func InitInstance(configFuncs ...ConfigFunc) bool {
	initialized := false
	initOnce.Do(func() {
		instanceBus = NewEventBus(configFuncs...)
		initialized = true
	})
	return initialized
}

// Instance returns the global [EventBus], creating it with default settings on first use.
// Prefer passing an [EventBus] to producers and consumers explicitly, this is for hosts that need a single well-known bus.
// Use [EventBus.Clear] to reset it between runs instead of replacing it.
func Instance() *EventBus {
	initOnce.Do(func() {
		instanceBus = NewEventBus()
	})
	return instanceBus
}

type invoker func(instance any, evt any)

type registration struct {
	event   reflect.Type
	factory func() (any, error)
	invoke  invoker
}

// EventBus is an in-process, synchronous, type-keyed publish/subscribe hub.
//
// The registry maps each event kind to the handler kinds subscribed to it, in subscription order.
// Each handler kind has at most one instance, built lazily by its [Factory] and cached until the kind is unsubscribed.
//
// All methods are safe to call from multiple goroutines, and from within a handler.
type EventBus struct {
	conf busConf

	mux       sync.RWMutex
	registry  map[reflect.Type]*set.Ordered[reflect.Type]
	handlers  map[reflect.Type]registration
	instances map[reflect.Type]any
}

// NewEventBus will create a new [EventBus], applying any given [ConfigFunc].
// This panics if a [ConfigFunc] returns an error, since that indicates a programming mistake.
func NewEventBus(configFuncs ...ConfigFunc) *EventBus {
	conf := defaultConf()
	for _, fn := range configFuncs {
		if err := fn(&conf); err != nil {
			panic(err)
		}
	}
	b := &EventBus{conf: conf}
	b.reset()
	return b
}

func (b *EventBus) reset() {
	b.registry = map[reflect.Type]*set.Ordered[reflect.Type]{}
	b.handlers = map[reflect.Type]registration{}
	b.instances = map[reflect.Type]any{}
}

// Subscribe registers handler kind H for events of kind E.
// Subscribing the same pair again is a no-op.
// No handler is constructed here, factory is called on the first [Publish] that needs an instance.
//
// Passing a nil factory panics.
func Subscribe[E Event, H Handler[E]](bus *EventBus, factory Factory[H]) {
	if factory == nil {
		panic("nil handler factory")
	}
	bus.subscribe(reflect.TypeFor[H](), registration{
		event: reflect.TypeFor[E](),
		factory: func() (any, error) {
			h, err := factory()
			return h, err
		},
		invoke: func(instance any, evt any) {
			e, _ := evt.(E)
			instance.(H).Handle(e)
		},
	})
}

// A handler kind has exactly one Handle method, so it can only ever be subscribed to a single event kind.
func (b *EventBus) subscribe(handlerKind reflect.Type, reg registration) {
	added := syncx.LockFuncT(&b.mux, func() bool {
		if _, ok := b.handlers[handlerKind]; ok {
			return false
		}
		handlerKinds, ok := b.registry[reg.event]
		if !ok {
			handlerKinds = set.NewOrdered[reflect.Type]()
			b.registry[reg.event] = handlerKinds
		}
		handlerKinds.Add(handlerKind)
		b.handlers[handlerKind] = reg
		return true
	})
	if !added {
		b.conf.logger.Info("Handler already subscribed", "event", reg.event.String(), "handler", handlerKind.String())
	}
}

// Unsubscribe removes handler kind H from event kind E.
// It's safe to call for a pair that isn't subscribed.
//
// H's cached instance, if any, is evicted, and stopped if it's a [Stopper].
// A later [Subscribe] starts over with a fresh instance.
func Unsubscribe[E Event, H Handler[E]](bus *EventBus) {
	bus.unsubscribe(reflect.TypeFor[E](), reflect.TypeFor[H]())
}

func (b *EventBus) unsubscribe(eventKind, handlerKind reflect.Type) {
	var evicted lookup
	removed := syncx.LockFuncT(&b.mux, func() bool {
		if _, ok := b.handlers[handlerKind]; !ok {
			return false
		}
		delete(b.handlers, handlerKind)
		if handlerKinds, ok := b.registry[eventKind]; ok {
			handlerKinds.Remove(handlerKind)
			if handlerKinds.Len() == 0 {
				delete(b.registry, eventKind)
			}
		}
		evicted.instance, evicted.ok = b.instances[handlerKind]
		delete(b.instances, handlerKind)
		return true
	})
	if !removed {
		b.conf.logger.Debug("Handler was not subscribed", "event", eventKind.String(), "handler", handlerKind.String())
		return
	}
	if evicted.ok {
		stop(evicted.instance)
	}
}

// Publish dispatches evt to every handler kind subscribed to E, in subscription order, on the calling goroutine.
// It returns once all handlers have returned. Publishing with no subscribers is a no-op.
//
// Dispatch uses the type argument E exactly: handlers subscribed to an interface kind won't see an event published as a concrete kind, and vice versa.
//
// The set of handler kinds is captured when Publish is called.
// A handler kind unsubscribed by an earlier handler in the same dispatch is skipped.
//
// A handler that can't be constructed, or that panics, is reported as a [*HandlerError].
// A panicking handler's instance is evicted so the next dispatch gets a fresh one.
// Whether dispatch continues after a failure depends on the bus [FailurePolicy].
func Publish[E Event](bus *EventBus, evt E) error {
	return bus.publish(reflect.TypeFor[E](), evt)
}

func (b *EventBus) publish(eventKind reflect.Type, evt any) error {
	handlerKinds := syncx.RLockFuncT(&b.mux, func() []reflect.Type {
		return b.registry[eventKind].Slice()
	})
	if len(handlerKinds) == 0 {
		return nil
	}
	var errs []error
	for _, handlerKind := range handlerKinds {
		err := b.deliver(handlerKind, evt)
		if err == nil {
			continue
		}
		if b.conf.policy == FailFast {
			return err
		}
		b.conf.logger.Warn("Handler failed, continuing dispatch", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (b *EventBus) deliver(handlerKind reflect.Type, evt any) (err error) {
	instance, reg, ok, err := b.instanceFor(handlerKind)
	if err != nil || !ok {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			b.evictFaulted(handlerKind)
			err = &HandlerError{
				EventKind:   reg.event.String(),
				HandlerKind: handlerKind.String(),
				Err:         panicErr(r),
			}
		}
	}()
	reg.invoke(instance, evt)
	return nil
}

// instanceFor finds or builds the cached instance of a handler kind.
// The factory runs without holding the lock, so the kind may be unsubscribed or built elsewhere in the meantime.
// ok is false if the handler kind isn't subscribed (anymore).
func (b *EventBus) instanceFor(handlerKind reflect.Type) (instance any, reg registration, ok bool, err error) {
	var cached bool
	syncx.RLockFunc(&b.mux, func() {
		reg, ok = b.handlers[handlerKind]
		if !ok {
			return
		}
		instance, cached = b.instances[handlerKind]
	})
	if !ok || cached {
		return instance, reg, ok, nil
	}

	built, err := reg.factory()
	if err != nil {
		return nil, reg, false, &HandlerError{
			EventKind:   reg.event.String(),
			HandlerKind: handlerKind.String(),
			Err:         fmt.Errorf("%w: %w", ErrConstruct, err),
		}
	}
	var stored bool
	syncx.LockFunc(&b.mux, func() {
		if _, ok = b.handlers[handlerKind]; !ok {
			return
		}
		if existing, found := b.instances[handlerKind]; found {
			instance = existing
			return
		}
		b.instances[handlerKind] = built
		instance = built
		stored = true
	})
	if !stored {
		stop(built)
	}
	return instance, reg, ok, nil
}

func (b *EventBus) evictFaulted(handlerKind reflect.Type) {
	found := syncx.LockFuncT(&b.mux, func() lookup {
		instance, ok := b.instances[handlerKind]
		delete(b.instances, handlerKind)
		return lookup{instance, ok}
	})
	if found.ok {
		stop(found.instance)
	}
}

// panicErr keeps the chain of a panic value that's an error.
func panicErr(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrHandlerPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrHandlerPanic, r)
}

type lookup struct {
	instance any
	ok       bool
}

// Clear removes all subscriptions and cached handler instances, leaving an empty but usable bus.
// Cached instances that implement [Stopper] are stopped.
func (b *EventBus) Clear() {
	instances := syncx.LockFuncT(&b.mux, func() map[reflect.Type]any {
		instances := b.instances
		b.reset()
		return instances
	})
	for _, instance := range instances {
		stop(instance)
	}
}

// IsSubscribed reports whether handler kind H is currently subscribed to event kind E.
func IsSubscribed[E Event, H Handler[E]](bus *EventBus) bool {
	handlerKind := reflect.TypeFor[H]()
	return syncx.RLockFuncT(&bus.mux, func() bool {
		_, ok := bus.handlers[handlerKind]
		return ok
	})
}

// Subscribers returns the number of handler kinds subscribed to event kind E.
func Subscribers[E Event](bus *EventBus) int {
	eventKind := reflect.TypeFor[E]()
	return syncx.RLockFuncT(&bus.mux, func() int {
		return bus.registry[eventKind].Len()
	})
}

// Cached returns the cached instance of handler kind H, if one has been built.
// This never constructs an instance.
func Cached[H any](bus *EventBus) (H, bool) {
	handlerKind := reflect.TypeFor[H]()
	found := syncx.RLockFuncT(&bus.mux, func() lookup {
		instance, ok := bus.instances[handlerKind]
		return lookup{instance, ok}
	})
	if !found.ok {
		var zero H
		return zero, false
	}
	return found.instance.(H), true
}

func stop(instance any) {
	if s, ok := instance.(Stopper); ok {
		s.Stop()
	}
}
