package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// settleDelay is how long a spooled file must stay quiet before it is
// imported, so half-written files are not picked up mid-copy.
const settleDelay = 500 * time.Millisecond

// Watcher imports CSV files dropped into a spool directory.
type Watcher struct {
	loader *Loader
	log    logging.Logger
}

// NewWatcher builds a spool-directory watcher around a loader.
func NewWatcher(loader *Loader, log logging.Logger) *Watcher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Watcher{loader: loader, log: log.Named("watcher")}
}

// Watch blocks importing every CSV written to dir until ctx is canceled.
// Each file is imported once its writes have settled; import failures are
// logged and the watch continues.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "creating filesystem watcher failed")
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "watching spool directory failed").WithDetail(dir)
	}
	w.log.Info("watching spool directory", logging.String("dir", dir))

	// One settle timer per path; rewrites reset the timer.
	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(settleDelay)
			return
		}
		timers[path] = time.AfterFunc(settleDelay, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()

			if ctx.Err() != nil {
				return
			}
			if _, err := w.loader.ImportFile(ctx, path); err != nil {
				w.log.Error("spool import failed", logging.String("file", path), logging.Err(err))
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".csv") {
				continue
			}
			schedule(event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("filesystem watcher error", logging.Err(err))
		}
	}
}
