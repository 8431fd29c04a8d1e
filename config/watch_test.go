package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWatchTimeout = 5 * time.Second

func TestWatch(t *testing.T) {
	path := writeConfig(t, "starting_time: 10s\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads, err := Watch(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	// An invalid change is skipped, and the next valid one comes through.
	require.NoError(t, os.WriteFile(path, []byte("starting_time: -1s\n"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("starting_time: 20s\n"), 0o600))

	// A single write may be seen more than once, or mid-write as an empty file, so wait for the final value.
	deadline := time.After(testWatchTimeout)
	for received := false; !received; {
		select {
		case conf := <-reloads:
			received = conf.StartingTime == 20*time.Second
		case <-deadline:
			t.Fatal("Timed out waiting for config reload")
		}
	}

	cancel()
	select {
	case _, more := <-drain(reloads):
		assert.False(t, more, "Channel should close when the context is done")
	case <-time.After(testWatchTimeout):
		t.Fatal("Timed out waiting for watcher to stop")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), "/does/not/exist/dayloop.yaml", slog.Default())
	assert.Error(t, err)
}

// drain skips any reloads still buffered, and reports when the channel closes.
func drain(reloads <-chan Config) <-chan Config {
	done := make(chan Config)
	go func() {
		for range reloads {
		}
		close(done)
	}()
	return done
}
