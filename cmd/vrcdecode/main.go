package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ib-77/vrcdecode/internal/config"
	"github.com/ib-77/vrcdecode/internal/logging"
	"github.com/ib-77/vrcdecode/internal/output"
)

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"f"},
	Value:   "table",
	Usage:   "Output format: table, json",
}

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Path to a TOML configuration file",
	EnvVars: []string{"VRCDECODE_CONFIG"},
}

func getFormatter(c *cli.Context) (output.Formatter, error) {
	format := c.String("format")
	if format != "table" && format != "json" {
		return nil, fmt.Errorf("invalid format %q: must be 'table' or 'json'", format)
	}
	return output.NewFormatter(output.Format(format)), nil
}

func loadConfig(c *cli.Context) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "vrcdecode",
		Usage:     "Decode the Aztec code of a vehicle registration certificate",
		Version:   "0.1.0",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			decodeCommand(),
			encodeCommand(),
			schemaCommand(),
			serveCommand(),
		},
		// field values may contain commas
		DisableSliceFlagSeparator: true,
	}
}

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
