package game

import (
	"log/slog"

	"github.com/saylorsolutions/dayloop/daytimer"
	"github.com/saylorsolutions/dayloop/patterns/eventbus"
)

var (
	_ eventbus.Handler[daytimer.DayEnded] = (*DayEndLogger)(nil)
	_ eventbus.Handler[ConfigReloaded]    = (*timerReconfigurer)(nil)
)

// DayEndLogger logs each ended day and keeps a count of them.
type DayEndLogger struct {
	log      *slog.Logger
	daysSeen int
	last     daytimer.DayEnded
}

func NewDayEndLogger(log *slog.Logger) *DayEndLogger {
	return &DayEndLogger{log: log}
}

func (h *DayEndLogger) Handle(evt daytimer.DayEnded) {
	h.daysSeen++
	h.last = evt
	h.log.Info("Day ended",
		"day", evt.Day,
		"tasks", evt.TasksCompleted,
		"event_id", evt.EventID(),
	)
}

// DaysSeen is the number of [daytimer.DayEnded] events handled by this instance.
func (h *DayEndLogger) DaysSeen() int {
	return h.daysSeen
}

// Last is the most recent event handled, or the zero value if there hasn't been one.
func (h *DayEndLogger) Last() daytimer.DayEnded {
	return h.last
}

// timerReconfigurer applies reloaded settings to the running timer.
type timerReconfigurer struct {
	log   *slog.Logger
	timer *daytimer.Timer
}

func (h *timerReconfigurer) Handle(evt ConfigReloaded) {
	before := h.timer.StartingTime()
	if err := h.timer.SetStartingTime(evt.Config.StartingTime); err != nil {
		h.log.Warn("Rejected reloaded starting time", "error", err)
		return
	}
	if before != evt.Config.StartingTime {
		h.log.Info("Day length changed, applies from the next day", "before", before, "after", evt.Config.StartingTime)
	}
}
