package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watch runs ProcessReady whenever the queue file changes, until the context
// is cancelled. Events are debounced because the store's atomic rename can
// surface as several filesystem events in a row.
func (p *Processor) Watch(ctx context.Context, queuePath string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	// The store writes via temp-file + rename, so watch the directory, not
	// the file inode.
	dir := filepath.Dir(queuePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create queue dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	p.log.Info().Str("queue", queuePath).Msg("watching queue")
	if err := p.ProcessReady(ctx); err != nil {
		p.log.Error().Err(err).Msg("initial queue pass failed")
	}

	timer := time.NewTimer(debounce)
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(queuePath) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
			pending = true

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.log.Warn().Err(err).Msg("watch error")

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := p.ProcessReady(ctx); err != nil {
				p.log.Error().Err(err).Msg("queue pass failed")
			}
		}
	}
}
