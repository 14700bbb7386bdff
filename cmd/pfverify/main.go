package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/MJE43/pf-verify-go/internal/buildinfo"
)

// Globals are shared by every subcommand.
type Globals struct {
	EnvFile []string `help:"Load variables from these .env files before reading the environment" type:"path"`
	JSON    bool     `help:"Print machine-readable JSON instead of styled text"`

	out io.Writer `kong:"-"`
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Verify  VerifyCmd        `cmd:"" help:"Recompute one round from its seeds and nonce"`
	History HistoryCmd       `cmd:"" help:"Walk the minesweeper hash chain"`
	Scan    ScanCmd          `cmd:"" help:"Search a nonce range for rounds matching a target"`
	Hash    HashCmd          `cmd:"" help:"Print the SHA-256 commitment of a server seed"`
	Games   GamesCmd         `cmd:"" help:"List supported games"`
	Serve   ServeCmd         `cmd:"" help:"Run the verification HTTP API"`
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("pfverify"),
		kong.Description("Provably fair outcome verifier"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": buildinfo.Version,
		},
	}, opts...)
	return kong.New(cli, opts...)
}

func main() {
	var cli CLI
	cli.out = os.Stdout

	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
