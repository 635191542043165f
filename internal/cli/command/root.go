package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Pessina/minredis/internal/cli/connection"
	"github.com/Pessina/minredis/internal/cli/output"
	"github.com/Pessina/minredis/internal/infra/buildinfo"
)

// DefaultAddr is the server address used when --addr is not given.
const DefaultAddr = "127.0.0.1:6379"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "minredis-cli",
		Usage:     "send commands to a minredis server",
		UsageText: "minredis-cli [global options] COMMAND [ARG...]",
		Version:   buildinfo.Get().Version,
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			VersionCommand(),
		},
		Action: sendArgs,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Usage:   "minredis server address",
			EnvVars: []string{"MINREDIS_ADDR"},
			Value:   DefaultAddr,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: raw, json, yaml",
			Value:   string(output.FormatRaw),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Dial and reply timeout",
			Value: connection.DefaultTimeout,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Addr    string
	Output  string
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Addr:    c.String("addr"),
		Output:  c.String("output"),
		Timeout: c.Duration("timeout"),
	}
}

// PingCommand returns the ping subcommand.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Check that the server answers",
		ArgsUsage: "[message]",
		Action: func(c *cli.Context) error {
			args := append([]string{"PING"}, c.Args().Slice()...)
			return send(c, args)
		},
	}
}

// VersionCommand returns the version subcommand.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show client build information",
		Action: func(c *cli.Context) error {
			flags := ParseGlobalFlags(c)
			if output.Format(flags.Output) == output.FormatRaw {
				_, err := fmt.Fprintln(c.App.Writer, "minredis-cli "+buildinfo.String())
				return err
			}
			f, err := output.NewFormatter(output.Format(flags.Output))
			if err != nil {
				return err
			}
			return f.Format(c.App.Writer, buildinfo.Get())
		},
	}
}

func sendArgs(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}
	return send(c, c.Args().Slice())
}

// send issues one command and prints the reply. The command name is
// upper-cased since the server matches names exactly.
func send(c *cli.Context, args []string) error {
	flags := ParseGlobalFlags(c)
	formatter, err := output.NewFormatter(output.Format(flags.Output))
	if err != nil {
		return err
	}

	args[0] = strings.ToUpper(args[0])

	ctx, cancel := context.WithTimeout(c.Context, flags.Timeout)
	defer cancel()

	client := connection.NewClient(flags.Addr, flags.Timeout)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Do(ctx, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return formatter.Format(c.App.Writer, reply)
}
