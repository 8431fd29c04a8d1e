package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file at path whenever it's written or replaced, and sends each valid result on the returned channel.
// Invalid files are logged and skipped, so a typo doesn't take down a running loop.
//
// The directory is watched rather than the file, since editors commonly save by renaming a temp file over the original.
// The channel is closed when ctx is done or the watcher fails.
func Watch(ctx context.Context, path string, log *slog.Logger) (<-chan Config, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to resolve config path '%s': %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory for '%s': %w", path, err)
	}

	reloads := make(chan Config, 1)
	go func() {
		defer close(reloads)
		defer func() {
			_ = watcher.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, more := <-watcher.Events:
				if !more {
					return
				}
				if filepath.Clean(evt.Name) != abs || !(evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create)) {
					continue
				}
				conf, err := Load(abs)
				if err != nil {
					log.Warn("Ignoring invalid config change", "path", abs, "error", err)
					continue
				}
				log.Debug("Config file changed", "path", abs)
				select {
				case reloads <- conf:
				case <-ctx.Done():
					return
				}
			case err, more := <-watcher.Errors:
				if !more {
					return
				}
				log.Error("Config watcher failed", "path", abs, "error", err)
				return
			}
		}
	}()
	return reloads, nil
}
