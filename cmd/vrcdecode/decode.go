package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ib-77/vrcdecode/internal/output"
	"github.com/ib-77/vrcdecode/pkg/vrc"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode scanned payloads given as arguments, in a file or on stdin",
		ArgsUsage: "[payload...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Read payloads from `FILE`, one per line",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent decoders (default: batch.workers, then CPU count)",
			},
			formatFlag,
			configFlag,
		},
		Action: decodeAction,
	}
}

func decodeAction(c *cli.Context) error {
	formatter, err := getFormatter(c)
	if err != nil {
		return err
	}
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	texts, err := readPayloads(c)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("no payloads given")
	}

	workers := cfg.Batch.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}

	dec := vrc.NewDecoder(append(cfg.DecoderOptions(), vrc.WithLogger(logger))...)
	reports := output.FromOutcomes(dec.DecodeAll(c.Context, texts, workers))
	if err := formatter.WriteReports(c.App.Writer, reports); err != nil {
		return err
	}

	if failed := output.Failed(reports); failed > 0 {
		return fmt.Errorf("%d of %d payloads failed", failed, len(reports))
	}
	return nil
}

func readPayloads(c *cli.Context) ([]string, error) {
	if c.Args().Present() {
		return c.Args().Slice(), nil
	}

	var r io.Reader = c.App.Reader
	if path := c.String("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var texts []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line != "" {
			texts = append(texts, line)
		}
	}
	return texts, scanner.Err()
}

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "encode",
		Usage: "Build a payload that decodes to the given fields",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "field",
				Aliases: []string{"F"},
				Usage:   "Field value as `POSITION=VALUE` or ATTRIBUTE=VALUE, repeatable",
			},
			&cli.IntFlag{
				Name:  "count",
				Value: vrc.MinFields,
				Usage: "Number of fields",
			},
			&cli.StringFlag{
				Name:  "label",
				Value: "Aztec",
				Usage: "Symbology label put in front of the payload, empty for none",
			},
		},
		Action: encodeAction,
	}
}

func encodeAction(c *cli.Context) error {
	count := c.Int("count")
	if count < 1 {
		return fmt.Errorf("invalid count %d", count)
	}

	fields := make(vrc.FieldList, count)
	for _, kv := range c.StringSlice("field") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid field %q: want POSITION=VALUE", kv)
		}
		pos, err := strconv.Atoi(key)
		if err != nil {
			var known bool
			if pos, known = vrc.PositionOf(key); !known {
				return fmt.Errorf("invalid field %q: unknown attribute %q", kv, key)
			}
		}
		if pos < 0 || pos >= len(fields) {
			return fmt.Errorf("invalid field %q: position outside 0..%d", kv, len(fields)-1)
		}
		if strings.Contains(value, vrc.FieldDelimiter) {
			return fmt.Errorf("invalid field %q: value contains %q", kv, vrc.FieldDelimiter)
		}
		fields[pos] = value
	}

	payload, err := vrc.EncodePayload(fields)
	if err != nil {
		return err
	}
	if label := c.String("label"); label != "" {
		payload = label + " " + payload
	}
	_, err = fmt.Fprintln(c.App.Writer, payload)
	return err
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the field positions of the record attributes",
		Flags: []cli.Flag{formatFlag},
		Action: func(c *cli.Context) error {
			formatter, err := getFormatter(c)
			if err != nil {
				return err
			}
			return formatter.WriteSchema(c.App.Writer, vrc.Schema())
		},
	}
}
