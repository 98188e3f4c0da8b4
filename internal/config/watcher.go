package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/glyphcore/internal/logging"
)

// Handler receives a reloaded configuration.
type Handler func(old, new *Config)

// Watcher reloads a configuration file when it changes on disk.
//
// The containing directory is watched rather than the file itself so that
// editors which save through a rename are seen. Reloads that fail to parse or
// validate are logged and dropped; the previous configuration stays current.
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	handler Handler
	logger  *logging.Logger

	mu      sync.Mutex
	current *Config

	accepted atomic.Int64
	rejected atomic.Int64

	stop context.CancelFunc
	done chan struct{}
}

// NewWatcher starts watching path. current is the configuration already in
// use; handler is called with it and the new value after each successful
// reload that changed something.
func NewWatcher(path string, current *Config, handler Handler, logger *logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.Null()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	ctx, stop := context.WithCancel(context.Background())
	w := &Watcher{
		path:    abs,
		fsw:     fsw,
		handler: handler,
		logger:  logger.WithComponent("config-watcher"),
		current: current,
		stop:    stop,
		done:    make(chan struct{}),
	}
	go w.watch(ctx)
	return w, nil
}

// Current returns the most recently accepted configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Reloads returns how many reloads were applied and how many were rejected.
func (w *Watcher) Reloads() (accepted, rejected int) {
	return int(w.accepted.Load()), int(w.rejected.Load())
}

// Close stops watching and waits until no handler call is in flight. It is
// safe to call more than once.
func (w *Watcher) Close() error {
	w.stop()
	<-w.done
	return w.fsw.Close()
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) == w.path && ev.Op.Has(fsnotify.Write|fsnotify.Create) {
				w.reload()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)
		}
	}
}

// reload applies the file if it parses, validates and differs from the
// current configuration.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.rejected.Add(1)
		w.logger.Warn("reload of %s rejected: %v", w.path, err)
		return
	}

	w.mu.Lock()
	old := w.current
	if old != nil && *old == *cfg {
		w.mu.Unlock()
		return
	}
	w.current = cfg
	w.mu.Unlock()
	w.accepted.Add(1)

	w.logger.Info("reloaded %s", w.path)
	if w.handler != nil {
		w.handler(old, cfg)
	}
}
