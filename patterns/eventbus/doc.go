/*
Package eventbus provides a typed, synchronous event bus that lets parts of an application react to each other without holding direct references.

# Design Priorities

  - It should be type safe. Events and handlers are ordinary Go types, and the compiler checks that a handler can handle the event it's subscribed to.
  - It should be deterministic. Dispatch happens on the publishing goroutine, in subscription order, and [Publish] doesn't return until every handler has run.
  - It should own handler lifecycles. Consumers subscribe a handler kind, not an instance, and the bus builds and caches exactly one instance of each kind.
  - It should be transparent about failures. Handlers that can't be built or that panic are reported back to the publisher.

# EventBus Primitives

An [Event] is any type that embeds [Meta], created with [NewMeta], and adds payload fields.

	type DayEnded struct {
		eventbus.Meta
		Day            int
		TasksCompleted int
	}

A handler kind is any type implementing [Handler] for an event type.
Handler kinds are identified by their Go type, so *Logger and Logger are different kinds.
The first time a handler kind is needed for dispatch, the bus calls the [Factory] given at subscription, and caches the result.
That instance is reused for every later dispatch, which makes it the natural place to keep running state like counters.

	eventbus.Subscribe[DayEnded, *Logger](bus, func() (*Logger, error) {
		return &Logger{log: logger}, nil
	})

Handlers that need to free resources when evicted may implement [Stopper].

# Dispatch Rules

Dispatch matches the type argument of the [Publish] call exactly.
There is no walk up an interface or embedding hierarchy: a handler subscribed to an interface event kind only sees events published with that interface as the type argument.

A handler kind is evicted from the instance cache when it's unsubscribed from its last event kind, when it panics during dispatch, or when [EventBus.Clear] is called.
Re-subscribing after eviction starts over with a fresh instance.

What happens after a handler fails is set with [WithFailurePolicy].
The default, [FailFast], stops at the first failure, and [Isolate] keeps going and joins all failures.

# EventBus Initialization

There are two ways to get an [EventBus]:
  - Use [NewEventBus] to create one and pass it explicitly to producers and consumers.
  - Use [Instance] to get a global singleton, optionally configured once with [InitInstance].

[EventBus.Clear] resets a bus to empty without replacing it, which is useful between tests or level reloads.
*/
package eventbus
