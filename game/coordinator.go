// Package game wires the day timer and the handlers that react to it together on an event bus.
package game

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/saylorsolutions/dayloop/config"
	"github.com/saylorsolutions/dayloop/daytimer"
	"github.com/saylorsolutions/dayloop/patterns/eventbus"
)

var (
	ErrNotStarted = errors.New("coordinator not started")
)

// Coordinator owns handler subscriptions for the game's core systems and runs the update loop.
// [Coordinator.Start] and [Coordinator.Stop] must be paired, so handler instances don't outlive the coordinator.
type Coordinator struct {
	bus         *eventbus.EventBus
	timer       *daytimer.Timer
	log         *slog.Logger
	started     bool
	daysPlayed  int
	AutoAdvance bool // Start the next day as soon as one ends.
	Days        int  // Stop Run after this many days, 0 runs until the context is done or a day ends without AutoAdvance.
}

// NewCoordinator creates a [Coordinator] for the given bus and timer.
// A nil bus means the global [eventbus.Instance].
func NewCoordinator(bus *eventbus.EventBus, timer *daytimer.Timer, log *slog.Logger) *Coordinator {
	if bus == nil {
		bus = eventbus.Instance()
	}
	if timer == nil {
		panic("nil timer")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		bus:         bus,
		timer:       timer,
		log:         log,
		AutoAdvance: true,
	}
}

// Start subscribes the core handlers. Calling Start again is a no-op.
func (c *Coordinator) Start() {
	if c.started {
		return
	}
	eventbus.Subscribe[daytimer.DayEnded, *DayEndLogger](c.bus, func() (*DayEndLogger, error) {
		return NewDayEndLogger(c.log), nil
	})
	eventbus.Subscribe[ConfigReloaded, *timerReconfigurer](c.bus, func() (*timerReconfigurer, error) {
		return &timerReconfigurer{log: c.log, timer: c.timer}, nil
	})
	c.started = true
	c.log.Debug("Initialized core systems")
}

// Stop unsubscribes the core handlers, evicting their instances.
func (c *Coordinator) Stop() {
	if !c.started {
		return
	}
	eventbus.Unsubscribe[daytimer.DayEnded, *DayEndLogger](c.bus)
	eventbus.Unsubscribe[ConfigReloaded, *timerReconfigurer](c.bus)
	c.started = false
}

// DaysPlayed is the number of days that have ended during [Coordinator.Run].
func (c *Coordinator) DaysPlayed() int {
	return c.daysPlayed
}

// Step advances the timer by elapsed, handling the end of a day.
// It reports whether the loop is done: either the configured number of days has been played, or a day ended without [Coordinator.AutoAdvance].
// A day left ended is picked up again if AutoAdvance has since been turned on by a reload.
func (c *Coordinator) Step(elapsed time.Duration) (bool, error) {
	if !c.started {
		return false, ErrNotStarted
	}
	if c.timer.Ended() {
		if c.daysDone() || !c.AutoAdvance {
			return true, nil
		}
		c.timer.NextDay()
	}
	if err := c.timer.Tick(elapsed); err != nil {
		return false, err
	}
	if !c.timer.Ended() {
		return false, nil
	}
	c.daysPlayed++
	if c.daysDone() || !c.AutoAdvance {
		return true, nil
	}
	c.timer.NextDay()
	return false, nil
}

func (c *Coordinator) daysDone() bool {
	return c.Days > 0 && c.daysPlayed >= c.Days
}

// Reload publishes a [ConfigReloaded] for conf, and applies the loop settings that live on the coordinator.
func (c *Coordinator) Reload(conf config.Config) error {
	if !c.started {
		return ErrNotStarted
	}
	c.AutoAdvance = conf.AutoAdvance
	c.Days = conf.Days
	return eventbus.Publish(c.bus, NewConfigReloaded(conf))
}

// Run steps the timer every tick until ctx is done, or [Coordinator.Step] reports that the loop is done.
// Each config received from reloads is applied with [Coordinator.Reload], on the same goroutine as the timer, so handlers never run concurrently.
// A reloaded tick takes effect immediately. A nil reloads channel is fine.
//
// The elapsed time passed to the timer is measured, so a slow handler shortens the next day rather than stretching it.
func (c *Coordinator) Run(ctx context.Context, tick time.Duration, reloads <-chan config.Config) error {
	if !c.started {
		return ErrNotStarted
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case conf, more := <-reloads:
			if !more {
				reloads = nil
				continue
			}
			if err := c.Reload(conf); err != nil {
				return err
			}
			if conf.Tick > 0 && conf.Tick != tick {
				c.log.Info("Tick changed", "before", tick, "after", conf.Tick)
				tick = conf.Tick
				ticker.Reset(tick)
			}
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			done, err := c.Step(elapsed)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}
