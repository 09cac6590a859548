// Package daemon implements the f5readerd lifecycle: configuration store,
// HTTP API, and optional reload-on-change watching.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/veepee-oss/f5-reader/pkg/api"
	"github.com/veepee-oss/f5-reader/pkg/store"
)

// reloadDebounce coalesces bursty editor/atomic-write events on the
// watched dump into a single reload.
const reloadDebounce = 250 * time.Millisecond

// Options configures the daemon.
type Options struct {
	ConfigFile string
	APIAddr    string
	APIToken   string // empty = no authentication
	Watch      bool   // reload when the dump changes on disk
}

// Daemon is the long-running f5reader service.
type Daemon struct {
	opts  Options
	store *store.Store
}

// New creates a new Daemon.
func New(opts Options) *Daemon {
	if opts.APIAddr == "" {
		opts.APIAddr = "127.0.0.1:8443"
	}

	return &Daemon{
		opts:  opts,
		store: store.New(opts.ConfigFile),
	}
}

// Store exposes the daemon's configuration store.
func (d *Daemon) Store() *store.Store {
	return d.store
}

// Run starts the daemon and blocks until shutdown.
func (d *Daemon) Run(ctx context.Context) error {
	slog.Info("starting f5reader daemon",
		"config", d.opts.ConfigFile,
		"pid", os.Getpid())

	// The first load must succeed; later reloads may fail and keep the
	// previous tree active.
	if err := d.store.Load(); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	slog.Info("configuration loaded", "file", d.opts.ConfigFile)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var auth *api.AuthConfig
	if d.opts.APIToken != "" {
		auth = &api.AuthConfig{Token: d.opts.APIToken}
	}
	srv := api.NewServer(api.Config{
		Addr:  d.opts.APIAddr,
		Auth:  auth,
		Store: d.store,
	})

	var wg sync.WaitGroup
	if d.opts.Watch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.watch(ctx)
		}()
	}

	err := srv.Run(ctx)

	stop()
	wg.Wait()

	slog.Info("shutdown complete")
	return err
}

// watch reloads the store when the configuration dump changes on disk.
// The parent directory is watched so atomic replace (write tmp + rename)
// is seen too.
func (d *Daemon) watch(ctx context.Context) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("watch disabled", "err", err)
		return
	}
	defer w.Close()

	dir := filepath.Dir(d.opts.ConfigFile)
	base := filepath.Base(d.opts.ConfigFile)
	if err := w.Add(dir); err != nil {
		slog.Warn("watch disabled", "err", err)
		return
	}

	slog.Info("watching configuration", "path", d.opts.ConfigFile)

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(reloadDebounce)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(reloadDebounce)
		}
		timerCh = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			schedule()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error", "err", err)
		case <-timerCh:
			timerCh = nil
			if err := d.store.Load(); err != nil {
				slog.Error("reload failed, keeping previous configuration", "err", err)
				continue
			}
			slog.Info("configuration reloaded", "generation", d.store.Generation())
		}
	}
}
