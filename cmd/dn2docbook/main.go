package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/dn2docbook/cmd/dn2docbook/commands"
	ferrors "git.home.luguber.info/inful/dn2docbook/internal/foundation/errors"
	_ "git.home.luguber.info/inful/dn2docbook/internal/xslt/libxslt"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Logger: slog.Default()}

	parser, err := kong.New(cli,
		kong.Name("dn2docbook"),
		kong.Description("Convert DocUtils native XML to DocBook 5."),
		kong.Bind(global),
		commands.Vars(),
	)
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		if _, ok := ferrors.AsClassified(err); !ok {
			err = ferrors.ValidationError("invalid arguments").WithCause(err).Build()
		}
		ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
		return
	}

	err = kctx.Run(cli)
	ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
}
