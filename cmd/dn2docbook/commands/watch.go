package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	ferrors "git.home.luguber.info/inful/dn2docbook/internal/foundation/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/logfields"
	"git.home.luguber.info/inful/dn2docbook/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Source   string        `arg:"" help:"DN XML file, or directory containing the index document" type:"path"`
	Output   string        `arg:"" help:"Output file (file source) or directory (directory source)" type:"path"`
	Debounce time.Duration `help:"Quiet period before a rebuild (default from config, 500ms)"`

	ConversionFlags `embed:""`
}

func (w *WatchCmd) Run(g *Global, _ *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunWatch(ctx, g, w.Source, w.Output, w.debounce(g), w.ConversionFlags)
}

func (w *WatchCmd) debounce(g *Global) time.Duration {
	if w.Debounce > 0 {
		return w.Debounce
	}
	return g.Config.Watch.Debounce
}

// RunWatch converts source once and again after every settled change until ctx is done.
// A failing conversion is logged and does not stop watching.
func RunWatch(ctx context.Context, g *Global, source, output string, debounce time.Duration, flags ConversionFlags) error {
	if err := checkPaths(source, output); err != nil {
		return err
	}
	sess, err := openSession(g, flags)
	if err != nil {
		return err
	}
	defer sess.Close()

	build := func(ctx context.Context) error {
		_, err := sess.run(ctx, source, output)
		return err
	}
	if err := build(ctx); err != nil {
		g.Logger.Error("Initial conversion failed", logfields.Error(err))
	}

	absOutput, err := filepath.Abs(output)
	if err != nil {
		return ferrors.FileSystemError("cannot resolve output").WithCause(err).Build()
	}
	watcher, err := watch.New(source, build,
		watch.WithDebounce(debounce),
		watch.WithLogger(g.Logger),
		watch.WithIgnore(func(path string) bool {
			return path == absOutput || strings.HasPrefix(path, absOutput+string(filepath.Separator))
		}))
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}
