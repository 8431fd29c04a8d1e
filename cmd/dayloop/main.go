package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/saylorsolutions/dayloop/cli"
	"github.com/saylorsolutions/dayloop/config"
	"github.com/saylorsolutions/dayloop/daytimer"
	"github.com/saylorsolutions/dayloop/game"
	"github.com/saylorsolutions/dayloop/patterns/eventbus"
	"github.com/saylorsolutions/dayloop/slogx"
)

const description = "Runs the day cycle of the game core headless."

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := execute(ctx, os.Args[1:], os.Stderr); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func execute(ctx context.Context, args []string, out io.Writer) error {
	set := newCommandSet(ctx, out)
	if set.RespondUsage(args, description) {
		return nil
	}
	err := set.Exec(args)
	if errors.Is(err, cli.ErrUnknownCommand) {
		set.PrintUsage(description)
	}
	return err
}

func newCommandSet(ctx context.Context, out io.Writer) *cli.CommandSet {
	set := cli.NewCommandSet("dayloop")
	set.Printer().Redirect(out)

	run := set.AddCommand("run", "Runs the day loop until the configured number of days has passed, or until interrupted")
	run.Usage("run [FLAGS]")
	defineRunFlags(run.Flags())
	run.Does(func(flags *flag.FlagSet, printer *cli.Printer) error {
		return runDayLoop(ctx, flags, printer.Writer())
	})

	bench := set.AddCommand("bench", "Measures event bus publish throughput")
	bench.Usage("bench [FLAGS]")
	bench.Flags().DurationP("duration", "d", time.Second, "How long to publish for")
	bench.Does(func(flags *flag.FlagSet, printer *cli.Printer) error {
		return benchPublish(cli.MustGet(flags.GetDuration("duration")), printer)
	})
	return set
}

func defineRunFlags(flags *flag.FlagSet) {
	flags.StringP("config", "c", "", "Path to a YAML config file")
	flags.BoolP("watch", "w", false, "Reload the config file when it changes")
	flags.Duration("tick", 0, "Overrides the configured time between timer updates")
	flags.Int("days", -1, "Overrides the configured number of days to run, 0 runs until interrupted")
	flags.Duration("day-length", 0, "Overrides the configured length of a day")
	flags.String("log-level", "", "Overrides the configured log level")
	flags.String("log-format", "", "Overrides the configured log format: text, json, or auto")
	flags.String("log-file", "", "Also writes JSON logs to this file")
}

// flagOverrides captures the flags given on the command line, and returns a function that applies them to a [config.Config].
// Flags take precedence over the file and environment, on startup and for every reload.
func flagOverrides(flags *flag.FlagSet) func(conf *config.Config) {
	var overrides []func(conf *config.Config)
	if flags.Changed("tick") {
		tick := cli.MustGet(flags.GetDuration("tick"))
		overrides = append(overrides, func(conf *config.Config) { conf.Tick = tick })
	}
	if flags.Changed("days") {
		days := cli.MustGet(flags.GetInt("days"))
		overrides = append(overrides, func(conf *config.Config) { conf.Days = days })
	}
	if flags.Changed("day-length") {
		dayLength := cli.MustGet(flags.GetDuration("day-length"))
		overrides = append(overrides, func(conf *config.Config) { conf.StartingTime = dayLength })
	}
	if flags.Changed("log-level") {
		level := cli.MustGet(flags.GetString("log-level"))
		overrides = append(overrides, func(conf *config.Config) { conf.LogLevel = level })
	}
	if flags.Changed("log-format") {
		format := cli.MustGet(flags.GetString("log-format"))
		overrides = append(overrides, func(conf *config.Config) { conf.LogFormat = format })
	}
	if flags.Changed("log-file") {
		file := cli.MustGet(flags.GetString("log-file"))
		overrides = append(overrides, func(conf *config.Config) { conf.LogFile = file })
	}
	return func(conf *config.Config) {
		for _, override := range overrides {
			override(conf)
		}
	}
}

// overrideReloads applies override to every config received from reloads.
// Reloads that are invalid after the override are logged and skipped.
func overrideReloads(ctx context.Context, reloads <-chan config.Config, override func(*config.Config), log *slog.Logger) <-chan config.Config {
	overridden := make(chan config.Config)
	go func() {
		defer close(overridden)
		for conf := range reloads {
			override(&conf)
			if err := conf.Validate(); err != nil {
				log.Warn("Ignoring reloaded config", "error", err)
				continue
			}
			select {
			case overridden <- conf:
			case <-ctx.Done():
				return
			}
		}
	}()
	return overridden
}

func runDayLoop(ctx context.Context, flags *flag.FlagSet, out io.Writer) error {
	confPath := cli.MustGet(flags.GetString("config"))
	watch := cli.MustGet(flags.GetBool("watch"))
	if watch && len(confPath) == 0 {
		return errors.New("--watch requires --config")
	}

	override := flagOverrides(flags)
	conf, err := config.Load(confPath)
	if err != nil {
		return err
	}
	override(&conf)
	if err := conf.Validate(); err != nil {
		return err
	}

	log, closeLog, err := newLogger(conf, out)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeLog()
	}()
	eventbus.InitInstance(eventbus.WithLogger(log))
	bus := eventbus.Instance()
	defer bus.Clear()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var reloads <-chan config.Config
	if watch {
		watched, err := config.Watch(ctx, confPath, log)
		if err != nil {
			return err
		}
		reloads = overrideReloads(ctx, watched, override, log)
	}

	timer := daytimer.New(bus, conf.StartingTime)
	coord := game.NewCoordinator(bus, timer, log)
	coord.AutoAdvance = conf.AutoAdvance
	coord.Days = conf.Days
	coord.Start()
	defer coord.Stop()

	log.Info("Starting day loop", "day_length", conf.StartingTime, "tick", conf.Tick, "days", conf.Days)
	if err := coord.Run(ctx, conf.Tick, reloads); err != nil {
		return err
	}
	log.Info("Day loop finished", "days_played", coord.DaysPlayed())
	return nil
}

// newLogger logs to out in the configured format, and also as JSON to the configured log file if there is one.
// The returned function closes the log file.
func newLogger(conf config.Config, out io.Writer) (*slog.Logger, func() error, error) {
	noClose := func() error { return nil }
	log, err := slogx.NewLogger(out, conf.LogFormat, conf.LogLevel)
	if err != nil {
		return nil, noClose, err
	}
	if len(conf.LogFile) == 0 {
		return log, noClose, nil
	}
	level, err := slogx.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, noClose, err
	}
	f, err := os.OpenFile(conf.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noClose, fmt.Errorf("failed to open log file '%s': %w", conf.LogFile, err)
	}
	fileHandler, err := slogx.NewHandler(f, slogx.FormatJSON, level)
	if err != nil {
		_ = f.Close()
		return nil, noClose, err
	}
	return slog.New(slogx.MergeHandlers(log.Handler(), fileHandler)), f.Close, nil
}

// benchEvent is published by the bench command to a handler that does nothing but count.
type benchEvent struct {
	eventbus.Meta
}

type benchCounter struct {
	count int
}

func (c *benchCounter) Handle(benchEvent) {
	c.count++
}

// benchPublish publishes at least once, then keeps publishing until duration has passed.
func benchPublish(duration time.Duration, printer *cli.Printer) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be > 0, got %s", duration)
	}

	bus := eventbus.NewEventBus()
	defer bus.Clear()
	eventbus.Subscribe[benchEvent, *benchCounter](bus, eventbus.New[benchCounter])

	var (
		start      = time.Now()
		iterations int
	)
	for {
		if err := eventbus.Publish(bus, benchEvent{Meta: eventbus.NewMeta()}); err != nil {
			return err
		}
		iterations++
		if time.Since(start) >= duration {
			break
		}
	}
	elapsed := time.Since(start)
	counter, ok := eventbus.Cached[*benchCounter](bus)
	if !ok {
		return errors.New("bench handler was never built")
	}
	if counter.count != iterations {
		return fmt.Errorf("handler saw %d events, but %d were published", counter.count, iterations)
	}
	printer.Printf("Published %d events in %s (%d publishes per second)\n",
		iterations, elapsed.Round(time.Millisecond), int(float64(iterations)/elapsed.Seconds()))
	return nil
}
