// Package ingest watches the CV inbox and signals when a settled batch
// of documents is ready to screen.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/cv-screener/constants"
)

type WatchConfig struct {
	Dir      string        // inbox directory (non-recursive)
	Debounce time.Duration // coalesce rapid create/write bursts into one batch
	Logger   *slog.Logger
}

// Batch is one settled set of inbox arrivals.
type Batch struct {
	Paths []string
}

// StartWatcher watches cfg.Dir and emits a Batch once the inbox has
// been quiet for the debounce window. CVs land in bursts (bulk copies,
// mail exports), so per-file triggers would start a run per document;
// the debounce collapses a burst into one run.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan Batch, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		return nil, nil, errors.New("no inbox directory provided")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}
	if err := w.Add(cfg.Dir); err != nil {
		logger.Error("failed to watch inbox", "dir", cfg.Dir, "error", err)
		_ = w.Close()
		return nil, nil, err
	}

	batchCh := make(chan Batch, 4)
	errCh := make(chan error, 1)

	go func() {
		defer close(batchCh)
		defer close(errCh)
		defer w.Close()

		// The timer channel lives in the same select as the event
		// stream so pending is only ever touched from this goroutine.
		timer := time.NewTimer(cfg.Debounce)
		if !timer.Stop() {
			<-timer.C
		}
		pending := map[string]struct{}{}

		flush := func() {
			if len(pending) == 0 {
				return
			}
			batch := Batch{Paths: make([]string, 0, len(pending))}
			for p := range pending {
				batch.Paths = append(batch.Paths, p)
				delete(pending, p)
			}
			select {
			case batchCh <- batch:
			default:
				logger.Warn("batch channel full, dropping trigger", "files", len(batch.Paths))
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				flush()
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if !recognized(e.Name) {
					continue
				}
				if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				pending[e.Name] = struct{}{}
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(cfg.Debounce)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return batchCh, errCh, nil
}

func recognized(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return constants.AllowedExt(path)
}
