// Package daytimer counts down the time left in a game day, and announces the end of each day on an event bus.
package daytimer

import (
	"errors"
	"fmt"
	"time"

	"github.com/saylorsolutions/dayloop/patterns/eventbus"
)

var (
	ErrNegativeDuration    = errors.New("duration must not be negative")
	ErrInvalidStartingTime = errors.New("starting time must be greater than zero")
)

// DayEnded is published once when a day's countdown reaches zero.
type DayEnded struct {
	eventbus.Meta
	Day            int
	TasksCompleted int
}

func NewDayEnded(day, tasksCompleted int) DayEnded {
	return DayEnded{
		Meta:           eventbus.NewMeta(),
		Day:            day,
		TasksCompleted: tasksCompleted,
	}
}

// Timer tracks the remaining time in the current day.
// Days are numbered from 1.
//
// A Timer is driven by calls to [Timer.Tick] and is not concurrency safe; it's meant to be owned by a single update loop.
type Timer struct {
	bus          *eventbus.EventBus
	startingTime time.Duration
	remaining    time.Duration
	paused       bool
	ended        bool
	day          int
	tasks        int
}

// New creates a [Timer] for day 1 with startingTime on the clock.
// Panics if bus is nil or startingTime isn't positive.
func New(bus *eventbus.EventBus, startingTime time.Duration) *Timer {
	if bus == nil {
		panic("nil event bus")
	}
	if startingTime <= 0 {
		panic(fmt.Errorf("%w: %s", ErrInvalidStartingTime, startingTime))
	}
	return &Timer{
		bus:          bus,
		startingTime: startingTime,
		remaining:    startingTime,
		day:          1,
	}
}

// Tick advances the countdown by elapsed, unless the timer is paused or the day has already ended.
// When the countdown reaches zero it's clamped there, and a [DayEnded] is published.
// The publish error, if any, is returned.
func (t *Timer) Tick(elapsed time.Duration) error {
	if elapsed < 0 {
		return fmt.Errorf("%w: tick of %s", ErrNegativeDuration, elapsed)
	}
	if t.paused || t.ended {
		return nil
	}
	t.remaining -= elapsed
	if t.remaining > 0 {
		return nil
	}
	t.remaining = 0
	t.ended = true
	return eventbus.Publish(t.bus, NewDayEnded(t.day, t.tasks))
}

// AddTime puts more time on the clock.
// This doesn't revive a day that has already ended, use [Timer.Reset] for that.
func (t *Timer) AddTime(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeDuration, d)
	}
	t.remaining += d
	return nil
}

// SubtractTime takes time off the clock, stopping at zero.
// The day ends on the next [Timer.Tick].
func (t *Timer) SubtractTime(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeDuration, d)
	}
	t.remaining = max(0, t.remaining-d)
	return nil
}

func (t *Timer) Pause() {
	t.paused = true
}

func (t *Timer) Resume() {
	t.paused = false
}

// Reset restores the starting time and clears the end of day, without changing the day number or completed tasks.
func (t *Timer) Reset() {
	t.remaining = t.startingTime
	t.ended = false
}

// SetStartingTime changes the length of later days. The current countdown isn't affected until [Timer.Reset].
func (t *Timer) SetStartingTime(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidStartingTime, d)
	}
	t.startingTime = d
	return nil
}

// CompleteTask records a finished task for the current day.
func (t *Timer) CompleteTask() {
	t.tasks++
}

// NextDay moves to the next day with a full clock and no completed tasks.
func (t *Timer) NextDay() {
	t.day++
	t.tasks = 0
	t.Reset()
}

func (t *Timer) Remaining() time.Duration {
	return t.remaining
}

func (t *Timer) StartingTime() time.Duration {
	return t.startingTime
}

func (t *Timer) Paused() bool {
	return t.paused
}

func (t *Timer) Ended() bool {
	return t.ended
}

func (t *Timer) Day() int {
	return t.day
}

func (t *Timer) TasksCompleted() int {
	return t.tasks
}
