package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ConvertCmd implements the default 'convert' command.
type ConvertCmd struct {
	Source string `arg:"" help:"DN XML file, or directory containing the index document" type:"path"`
	Output string `arg:"" help:"Output file (file source) or directory (directory source)" type:"path"`

	ConversionFlags `embed:""`
}

func (c *ConvertCmd) Run(g *Global, _ *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunConvert(ctx, g, c.Source, c.Output, c.ConversionFlags)
}

// RunConvert converts source into output once.
func RunConvert(ctx context.Context, g *Global, source, output string, flags ConversionFlags) error {
	if err := checkPaths(source, output); err != nil {
		return err
	}
	sess, err := openSession(g, flags)
	if err != nil {
		return err
	}
	defer sess.Close()

	_, err = sess.run(ctx, source, output)
	return err
}
