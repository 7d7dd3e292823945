package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"

	"github.com/ib-77/vrcdecode/pkg/ucl"
	"github.com/ib-77/vrcdecode/pkg/vrc"
)

const (
	AlgorithmNRV2E = "nrv2e"
	AlgorithmNone  = "none"

	defaultMaxOutput = "1 MiB"
	defaultPort      = 8080
)

// Config : top-level configuration.
type Config struct {
	Decoder DecoderConfig `toml:"decoder"`
	Batch   BatchConfig   `toml:"batch"`
	HTTP    HTTPConfig    `toml:"http"`
	Log     LogConfig     `toml:"log"`
}

type DecoderConfig struct {
	// Algorithm is "nrv2e" or "none". With "none" every payload is read as
	// raw text.
	Algorithm string `toml:"algorithm"`
	MaxOutput string `toml:"max_output"`
}

type BatchConfig struct {
	// Workers <= 0 means one worker per CPU.
	Workers int `toml:"workers"`
}

type HTTPConfig struct {
	ListenIP       string `toml:"listen_ip"`
	Port           int    `toml:"port"`
	MaxRequestSize string `toml:"max_request_size"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// File, when set, receives the log instead of stderr and is rotated.
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

func Default() Config {
	return Config{
		Decoder: DecoderConfig{
			Algorithm: AlgorithmNRV2E,
			MaxOutput: defaultMaxOutput,
		},
		HTTP: HTTPConfig{
			ListenIP:       "0.0.0.0",
			Port:           defaultPort,
			MaxRequestSize: "1 MiB",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	cfgBytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(cfgBytes)
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Decoder.Algorithm {
	case AlgorithmNRV2E, AlgorithmNone:
	default:
		return fmt.Errorf("config: unknown decoder.algorithm %q", c.Decoder.Algorithm)
	}

	if _, err := parseSize("decoder.max_output", c.Decoder.MaxOutput); err != nil {
		return err
	}
	if _, err := parseSize("http.max_request_size", c.HTTP.MaxRequestSize); err != nil {
		return err
	}

	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: http.port %d out of range", c.HTTP.Port)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	return nil
}

// MaxOutputBytes is decoder.max_output in bytes.
func (c Config) MaxOutputBytes() int {
	n, _ := parseSize("decoder.max_output", c.Decoder.MaxOutput)
	return n
}

// MaxRequestBytes is http.max_request_size in bytes.
func (c Config) MaxRequestBytes() int64 {
	n, _ := parseSize("http.max_request_size", c.HTTP.MaxRequestSize)
	return int64(n)
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.ListenIP, c.HTTP.Port)
}

// Decompressor returns the decompressor decoder.algorithm names.
func (c Config) Decompressor() vrc.Decompressor {
	if c.Decoder.Algorithm == AlgorithmNone {
		return vrc.NoDecompression()
	}
	return ucl.NRV2E{MaxOutput: c.MaxOutputBytes()}
}

// DecoderOptions collects the vrc options the configuration implies.
func (c Config) DecoderOptions() []vrc.Option {
	return []vrc.Option{vrc.WithDecompressor(c.Decompressor())}
}

func parseSize(key, s string) (int, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, s, err)
	}
	if n == 0 || n > 1<<30 {
		return 0, fmt.Errorf("config: %s %q out of range", key, s)
	}
	return int(n), nil
}
