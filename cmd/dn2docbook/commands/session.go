package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/dn2docbook/internal/config"
	"git.home.luguber.info/inful/dn2docbook/internal/convert"
	converrors "git.home.luguber.info/inful/dn2docbook/internal/convert/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/docbook"
	ferrors "git.home.luguber.info/inful/dn2docbook/internal/foundation/errors"
	"git.home.luguber.info/inful/dn2docbook/internal/logfields"
	"git.home.luguber.info/inful/dn2docbook/internal/metrics"
	"git.home.luguber.info/inful/dn2docbook/internal/resources"
	"git.home.luguber.info/inful/dn2docbook/internal/xslt"
)

// ConversionFlags are shared by convert and watch. Unset flags fall back to the
// configuration file and environment.
type ConversionFlags struct {
	Toplevel        string `help:"Structure to produce: book or chapter" placeholder:"book|chapter"`
	Stylesheet      string `help:"Stylesheet to use instead of the embedded one" type:"path"`
	Engine          string `help:"XSLT engine (${engines})"`
	Index           string `help:"Name of the index document inside a source directory"`
	MetricsTextfile string `name:"metrics-textfile" help:"Write Prometheus metrics to this file after each run" type:"path"`
}

// settings is the effective configuration of one invocation.
type settings struct {
	toplevel   docbook.Toplevel
	stylesheet string
	engine     string
	index      string
	textfile   string
}

func (f ConversionFlags) resolve(cfg *config.Config) (settings, error) {
	s := settings{
		stylesheet: pick(f.Stylesheet, cfg.Stylesheet),
		engine:     pick(f.Engine, cfg.Engine),
		index:      pick(f.Index, cfg.Index),
		textfile:   pick(f.MetricsTextfile, cfg.Metrics.Textfile),
	}
	top, err := docbook.ParseToplevel(pick(f.Toplevel, cfg.Toplevel))
	if err != nil {
		return settings{}, ferrors.ValidationError("invalid --toplevel").
			WithCause(fmt.Errorf("%w: %w", converrors.ErrUnknownToplevel, err)).
			Build()
	}
	s.toplevel = top
	if s.index != filepath.Base(s.index) {
		return settings{}, ferrors.ValidationError(fmt.Sprintf("--index must be a file name, got %q", s.index)).Build()
	}
	return s, nil
}

func pick(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}

// session holds the engine and converter for one invocation; watch reuses it across runs.
type session struct {
	settings
	runner   *xslt.Runner
	conv     *convert.FileConverter
	recorder metrics.Recorder
	prom     *metrics.PrometheusRecorder
	logger   *slog.Logger
}

func openSession(g *Global, flags ConversionFlags) (*session, error) {
	s, err := flags.resolve(g.Config)
	if err != nil {
		return nil, err
	}

	data, origin, err := resources.LoadStylesheet(s.stylesheet)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot read stylesheet").
			WithCause(err).
			WithContext("path", s.stylesheet).
			Build()
	}
	engine, err := xslt.Open(s.engine, xslt.Stylesheet{Data: data, Origin: origin, Path: s.stylesheet})
	if err != nil {
		if errors.Is(err, xslt.ErrUnknownEngine) || errors.Is(err, exec.ErrNotFound) {
			return nil, ferrors.ConfigError("XSLT engine unavailable").
				WithCause(err).
				WithContext("engine", s.engine).
				Build()
		}
		return nil, ferrors.TransformError("cannot load stylesheet").
			WithCause(err).
			WithContext("stylesheet", origin).
			Build()
	}

	sess := &session{
		settings: s,
		runner:   xslt.NewRunner(s.engine, engine),
		recorder: metrics.NoopRecorder{},
		logger:   g.Logger,
	}
	if s.textfile != "" {
		sess.prom = metrics.NewPrometheusRecorder(nil)
		sess.recorder = sess.prom
	}
	sess.conv = convert.NewFileConverter(sess.runner,
		convert.WithRecorder(sess.recorder),
		convert.WithLogger(g.Logger))

	g.Logger.Debug("Stylesheet loaded", logfields.Engine(s.engine), logfields.Stylesheet(origin))
	return sess, nil
}

// run performs one conversion of source into output and exports metrics when asked to.
func (s *session) run(ctx context.Context, source, output string) (*convert.Result, error) {
	start := time.Now()
	result, err := convert.ConvertPath(ctx, s.conv, source, output, s.toplevel, convert.WithIndexName(s.index))

	s.recorder.ObserveRunDuration(time.Since(start))
	s.recorder.IncRunOutcome(metrics.Outcome(err, ctx.Err() != nil))
	if s.prom != nil {
		if werr := s.prom.WriteTextfile(s.textfile); werr != nil {
			s.logger.Warn("Failed to write metrics textfile", logfields.Path(s.textfile), logfields.Error(werr))
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Conversion finished",
		logfields.Source(source),
		logfields.Output(output),
		logfields.Toplevel(string(s.toplevel)),
		slog.Int("files", len(result.Files)),
		logfields.Since(start))
	return result, nil
}

func (s *session) Close() {
	if err := s.runner.Close(); err != nil {
		s.logger.Warn("Failed to close XSLT engine", logfields.Engine(s.runner.Name()), logfields.Error(err))
	}
}

// checkPaths rejects an output that would overwrite the source.
func checkPaths(source, output string) error {
	src, err := filepath.Abs(source)
	if err != nil {
		return ferrors.FileSystemError("cannot resolve source").WithCause(err).Build()
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return ferrors.FileSystemError("cannot resolve output").WithCause(err).Build()
	}
	if src == out {
		return ferrors.ValidationError("output must differ from source").
			WithContext("path", src).
			Build()
	}
	return nil
}
