package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses the burst of events editors emit when saving a file.
const reloadDebounce = 150 * time.Millisecond

// Watch reloads the configuration file whenever it changes and hands each valid result to fn.
// Invalid edits are logged and skipped so the running demo keeps its last good configuration.
// The parent directory is watched so editors that replace the file on save are followed.
//
// Parameters:
//   - ctx: cancelling it stops the watcher
//   - path: the configuration file
//   - fn: called from the watcher goroutine with each reloaded configuration
//
// Returns:
//   - error: an error if the watcher cannot be started, otherwise nil once ctx is done
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	if _, err := FormatOf(abs); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(reloadDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Config] watcher error: %v", err)
		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				log.Printf("[Config] reload of %s rejected: %v", abs, err)
				continue
			}
			log.Printf("[Config] reloaded %s", abs)
			fn(cfg)
		}
	}
}
