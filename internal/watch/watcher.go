// Package watch re-runs a conversion whenever its XML sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/dn2docbook/internal/foundation/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/logfields"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// BuildFunc performs one conversion run.
type BuildFunc func(ctx context.Context) error

// Watcher monitors a source file or directory and triggers debounced rebuilds.
// A Watcher is used for a single Run.
type Watcher struct {
	dir      string
	match    func(name string) bool
	ignore   func(path string) bool
	debounce time.Duration
	build    BuildFunc
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
	trigger  chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithIgnore skips events for paths the predicate accepts, such as outputs written into
// the watched directory.
func WithIgnore(fn func(path string) bool) Option {
	return func(w *Watcher) { w.ignore = fn }
}

// New watches source. A directory is watched for *.xml changes, a file for changes to
// itself.
func New(source string, build BuildFunc, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot resolve watch path").WithCause(err).WithContext("path", source).Build()
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot access watch path").WithCause(err).WithContext("path", source).Build()
	}

	w := &Watcher{
		debounce: DefaultDebounce,
		build:    build,
		logger:   slog.Default(),
		ignore:   func(string) bool { return false },
		trigger:  make(chan struct{}, 1),
	}
	if info.IsDir() {
		w.dir = abs
		w.match = func(name string) bool { return strings.HasSuffix(name, ".xml") }
	} else {
		// Editors replace files on save, so the parent is watched instead of the file.
		w.dir = filepath.Dir(abs)
		base := filepath.Base(abs)
		w.match = func(name string) bool { return name == base }
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.InternalError("failed to create file watcher").WithCause(err).Build()
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return nil, ferrors.FileSystemError(fmt.Sprintf("failed to watch %s", w.dir)).WithCause(err).WithContext("path", w.dir).Build()
	}
	w.fsw = fsw
	return w, nil
}

// Run blocks until ctx is done, rebuilding after each settled burst of changes.
// Builds never overlap. Build failures are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	w.logger.Info("Watching for changes", logfields.Path(w.dir), slog.Duration("debounce", w.debounce))
	go w.watchLoop(ctx)
	w.buildLoop(ctx)
	return nil
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Source change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			w.triggerBuild()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if !w.match(filepath.Base(event.Name)) {
		return false
	}
	return !w.ignore(event.Name)
}

func (w *Watcher) triggerBuild() {
	select {
	case w.trigger <- struct{}{}:
	default:
		// already pending
	}
}

func (w *Watcher) buildLoop(ctx context.Context) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.trigger:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.runBuild(ctx)
		}
	}
}

func (w *Watcher) runBuild(ctx context.Context) {
	start := time.Now()
	if err := w.build(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("Rebuild failed", logfields.Error(err), logfields.Since(start))
		return
	}
	w.logger.Info("Rebuild complete", logfields.Since(start))
}
