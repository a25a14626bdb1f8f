package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/dn2docbook/internal/config"
	"git.home.luguber.info/inful/dn2docbook/internal/version"
	"git.home.luguber.info/inful/dn2docbook/internal/xslt"
)

// Global is shared state handed to every command.
type Global struct {
	Logger *slog.Logger
	Config *config.Config
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: ./dn2docbook.yaml when present)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Convert ConvertCmd `cmd:"" default:"withargs" help:"Convert a DN XML file, or a directory with an index, to DocBook"`
	Watch   WatchCmd   `cmd:"" help:"Convert, then convert again whenever the sources change"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; loads the configuration and sets up logging once.
func (c *CLI) AfterApply(kctx *kong.Context, g *Global) error {
	cfg, err := c.loadConfig(kctx.Command() == "init")
	if err != nil {
		return err
	}
	g.Config = cfg
	g.Logger = cfg.Logging.NewLogger(os.Stderr, c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig reads the explicit --config file, or the default file when it exists.
// init must work even when the file it is about to replace is broken.
func (c *CLI) loadConfig(forInit bool) (*config.Config, error) {
	if forInit {
		return config.Default(), nil
	}
	if c.Config != "" {
		return config.Load(c.Config)
	}
	return config.LoadOptional(config.DefaultPath)
}

// ConfigPath is the file init writes to.
func (c *CLI) ConfigPath() string {
	if c.Config != "" {
		return c.Config
	}
	return config.DefaultPath
}

// Vars are the interpolation variables used in flag help.
func Vars() kong.Vars {
	return kong.Vars{
		"version": version.String(),
		"engines": strings.Join(xslt.Engines(), ", "),
	}
}
