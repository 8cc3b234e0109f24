// Package main is the entry point for the addrsearch CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	acli "github.com/NikitaCOEUR/addrsearch/internal/cli"
	"github.com/NikitaCOEUR/addrsearch/internal/trace"
	"github.com/NikitaCOEUR/addrsearch/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer trace.Init()()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// common reads the root flags shared by every command.
func common(cmd *cli.Command) acli.Common {
	return acli.Common{
		ConfigPath: cmd.String("config"),
		LogLevel:   cmd.String("log-level"),
		Out:        cmd.Root().Writer,
		ErrOut:     cmd.Root().ErrWriter,
	}
}

// text joins the positional arguments into one input string.
func text(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() == 0 {
		return "", fmt.Errorf("missing address text")
	}
	return strings.Join(cmd.Args().Slice(), " "), nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "addrsearch",
		Usage:                 "Address autocomplete client, relay and offline fixture",
		Version:               version.Version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error); overrides the config file",
				Sources: cli.EnvVars("ADDRSEARCH_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file to use instead of the search order",
				Sources: cli.EnvVars("ADDRSEARCH_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "Split address text into house number and street",
				ArgsUsage: "<text>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					input, err := text(cmd)
					if err != nil {
						return err
					}
					return acli.Parse(common(cmd), input)
				},
			},
			{
				Name:      "query",
				Usage:     "Fetch suggestions for address text once and print them",
				ArgsUsage: "<text>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the raw rows as JSON",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					input, err := text(cmd)
					if err != nil {
						return err
					}
					return acli.Query(ctx, acli.QueryParams{
						Common: common(cmd),
						Text:   input,
						JSON:   cmd.Bool("json"),
					})
				},
			},
			{
				Name:      "search",
				Usage:     "Interactive address input with live suggestions",
				ArgsUsage: "[initial text]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return acli.Search(ctx, acli.SearchParams{
						Common:  common(cmd),
						Initial: strings.Join(cmd.Args().Slice(), " "),
					})
				},
			},
			{
				Name:  "serve",
				Usage: "Run the suggestion relay",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Listen address (overrides proxy.listen)",
					},
					&cli.StringFlag{
						Name:  "upstream",
						Usage: "Upstream service URL (overrides proxy.upstream)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return acli.Serve(ctx, acli.ServeParams{
						Common:   common(cmd),
						Listen:   cmd.String("listen"),
						Upstream: cmd.String("upstream"),
					})
				},
			},
			{
				Name:  "fixture",
				Usage: "Run an offline upstream serving rows from a local file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Listen address (overrides fixture.listen)",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "YAML or JSON row file (overrides fixture.file)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return acli.Fixture(ctx, acli.FixtureParams{
						Common: common(cmd),
						Listen: cmd.String("listen"),
						File:   cmd.String("file"),
					})
				},
			},
			{
				Name:  "init",
				Usage: "Create a config file with the default settings",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: "yml",
						Usage: "Config format (yml, toml, json)",
					},
					&cli.BoolFlag{
						Name:  "global",
						Usage: "Create the per-user config instead of a local one",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return acli.Init(acli.InitParams{
						Common: common(cmd),
						Format: cmd.String("format"),
						Global: cmd.Bool("global"),
					})
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate a config file",
				ArgsUsage: "[config-file]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					path := cmd.Args().First()
					if path == "" {
						path = cmd.String("config")
					}
					return acli.Validate(common(cmd), path)
				},
			},
			{
				Name:  "schema",
				Usage: "Display or export the config JSON Schema",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the schema to a file",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return acli.Schema(common(cmd), cmd.String("output"))
				},
			},
			{
				Name:  "status",
				Usage: "Show the effective configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "probe",
						Usage: "Check that the relay answers its health endpoint",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return acli.Status(ctx, acli.StatusParams{
						Common: common(cmd),
						Probe:  cmd.Bool("probe"),
					})
				},
			},
		},
	}
}
