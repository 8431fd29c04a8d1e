package game

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saylorsolutions/dayloop/config"
	"github.com/saylorsolutions/dayloop/daytimer"
	"github.com/saylorsolutions/dayloop/patterns/eventbus"
)

const testDayLength = 10 * time.Second

func TestCoordinator_StartStop(t *testing.T) {
	coord, bus, _ := testCoordinator(t)
	assert.False(t, eventbus.IsSubscribed[daytimer.DayEnded, *DayEndLogger](bus))

	coord.Start()
	coord.Start()
	assert.True(t, eventbus.IsSubscribed[daytimer.DayEnded, *DayEndLogger](bus))
	assert.Equal(t, 1, eventbus.Subscribers[daytimer.DayEnded](bus))
	assert.Equal(t, 1, eventbus.Subscribers[ConfigReloaded](bus))

	_, err := coord.Step(testDayLength)
	require.NoError(t, err)
	_, ok := eventbus.Cached[*DayEndLogger](bus)
	assert.True(t, ok)

	coord.Stop()
	assert.Equal(t, 0, eventbus.Subscribers[daytimer.DayEnded](bus))
	_, ok = eventbus.Cached[*DayEndLogger](bus)
	assert.False(t, ok, "Stop should evict handler instances")
	assert.NotPanics(t, coord.Stop)
}

func TestCoordinator_NotStarted(t *testing.T) {
	coord, _, _ := testCoordinator(t)
	_, err := coord.Step(time.Second)
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.ErrorIs(t, coord.Reload(config.Default()), ErrNotStarted)
	assert.ErrorIs(t, coord.Run(context.Background(), time.Millisecond, nil), ErrNotStarted)
}

func TestCoordinator_Step(t *testing.T) {
	coord, bus, logs := testCoordinator(t)
	coord.Start()
	defer coord.Stop()

	done, err := coord.Step(testDayLength / 2)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 0, coord.DaysPlayed())

	done, err = coord.Step(testDayLength)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, coord.DaysPlayed())

	logger, ok := eventbus.Cached[*DayEndLogger](bus)
	require.True(t, ok)
	assert.Equal(t, 1, logger.DaysSeen())
	assert.Equal(t, 1, logger.Last().Day)
	assert.Contains(t, logs.String(), "Day ended")
	assert.Contains(t, logs.String(), "day=1")
}

func TestCoordinator_AutoAdvance(t *testing.T) {
	coord, bus, _ := testCoordinator(t)
	coord.Start()
	defer coord.Stop()

	for i := 0; i < 3; i++ {
		_, err := coord.Step(testDayLength)
		require.NoError(t, err)
	}
	logger, _ := eventbus.Cached[*DayEndLogger](bus)
	assert.Equal(t, 3, logger.DaysSeen(), "Same handler instance should count every day")
	assert.Equal(t, 3, logger.Last().Day)
}

func TestCoordinator_NoAutoAdvance(t *testing.T) {
	coord, bus, _ := testCoordinator(t)
	coord.AutoAdvance = false
	coord.Days = 3
	coord.Start()
	defer coord.Stop()

	done, err := coord.Step(testDayLength / 2)
	require.NoError(t, err)
	assert.False(t, done)
	for i := 0; i < 3; i++ {
		done, err = coord.Step(testDayLength)
		require.NoError(t, err)
		assert.True(t, done, "An ended day without auto-advance should finish the loop, even below the days limit")
	}
	logger, _ := eventbus.Cached[*DayEndLogger](bus)
	assert.Equal(t, 1, logger.DaysSeen(), "Day should stay ended without auto-advance")
	assert.Equal(t, 1, coord.DaysPlayed())
}

func TestCoordinator_AutoAdvanceReloaded(t *testing.T) {
	coord, _, _ := testCoordinator(t)
	coord.AutoAdvance = false
	coord.Start()
	defer coord.Stop()

	done, err := coord.Step(testDayLength)
	require.NoError(t, err)
	assert.True(t, done)

	conf := config.Default()
	conf.AutoAdvance = true
	require.NoError(t, coord.Reload(conf))
	done, err = coord.Step(time.Second)
	require.NoError(t, err)
	assert.False(t, done)
	assert.False(t, coord.timer.Ended(), "Ended day should be advanced once auto-advance is back on")
	assert.Equal(t, 2, coord.timer.Day())
}

func TestCoordinator_RunNoAutoAdvance(t *testing.T) {
	bus := eventbus.NewEventBus()
	t.Cleanup(bus.Clear)
	timer := daytimer.New(bus, 5*time.Millisecond)
	coord := NewCoordinator(bus, timer, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	coord.AutoAdvance = false
	coord.Days = 5
	coord.Start()
	defer coord.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, coord.Run(ctx, time.Millisecond, nil))
	assert.NoError(t, ctx.Err(), "Run should return once the day ends")
	assert.Equal(t, 1, coord.DaysPlayed())
}

func TestCoordinator_RunReloadTick(t *testing.T) {
	var logs bytes.Buffer
	bus := eventbus.NewEventBus()
	t.Cleanup(bus.Clear)
	timer := daytimer.New(bus, 5*time.Millisecond)
	coord := NewCoordinator(bus, timer, slog.New(slog.NewTextHandler(&logs, nil)))
	coord.Days = 1
	coord.Start()
	defer coord.Stop()

	reloads := make(chan config.Config, 1)
	conf := config.Default()
	conf.StartingTime = 5 * time.Millisecond
	conf.Tick = time.Millisecond
	conf.Days = 1
	reloads <- conf

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, coord.Run(ctx, time.Hour, reloads))
	assert.NoError(t, ctx.Err(), "Reloaded tick should replace the hour long one")
	assert.Equal(t, 1, coord.DaysPlayed())
	assert.Contains(t, logs.String(), "Tick changed")
}

func TestCoordinator_DaysLimit(t *testing.T) {
	coord, _, _ := testCoordinator(t)
	coord.Days = 2
	coord.Start()
	defer coord.Stop()

	done, err := coord.Step(testDayLength)
	require.NoError(t, err)
	assert.False(t, done)
	done, err = coord.Step(testDayLength)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCoordinator_Reload(t *testing.T) {
	coord, _, _ := testCoordinator(t)
	coord.Start()
	defer coord.Stop()

	conf := config.Default()
	conf.StartingTime = 3 * time.Second
	conf.AutoAdvance = false
	conf.Days = 4
	require.NoError(t, coord.Reload(conf))
	assert.Equal(t, 3*time.Second, coord.timer.StartingTime())
	assert.Equal(t, testDayLength, coord.timer.Remaining(), "Current day keeps its clock")
	assert.False(t, coord.AutoAdvance)
	assert.Equal(t, 4, coord.Days)
}

func TestCoordinator_Run(t *testing.T) {
	bus := eventbus.NewEventBus()
	t.Cleanup(bus.Clear)
	timer := daytimer.New(bus, 20*time.Millisecond)
	coord := NewCoordinator(bus, timer, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	coord.Days = 2
	coord.Start()
	defer coord.Stop()

	reloads := make(chan config.Config, 1)
	conf := config.Default()
	conf.StartingTime = 10 * time.Millisecond
	conf.Days = 2
	reloads <- conf
	close(reloads)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, coord.Run(ctx, time.Millisecond, reloads))
	assert.NoError(t, ctx.Err(), "Run should finish on its own after the days limit")
	assert.Equal(t, 2, coord.DaysPlayed())
	assert.Equal(t, 10*time.Millisecond, timer.StartingTime())
}

func TestCoordinator_RunCancel(t *testing.T) {
	coord, _, _ := testCoordinator(t)
	coord.Start()
	defer coord.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, coord.Run(ctx, time.Millisecond, nil))
	assert.Equal(t, 0, coord.DaysPlayed())
}

func TestNewCoordinator_DefaultsToInstance(t *testing.T) {
	timer := daytimer.New(eventbus.Instance(), time.Second)
	coord := NewCoordinator(nil, timer, nil)
	assert.Same(t, eventbus.Instance(), coord.bus)
	assert.Panics(t, func() {
		NewCoordinator(nil, nil, nil)
	})
}

func testCoordinator(t *testing.T) (*Coordinator, *eventbus.EventBus, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	bus := eventbus.NewEventBus()
	t.Cleanup(bus.Clear)
	timer := daytimer.New(bus, testDayLength)
	return NewCoordinator(bus, timer, slog.New(slog.NewTextHandler(&logs, nil))), bus, &logs
}
