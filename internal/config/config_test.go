package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/vrcdecode/pkg/ucl"
	"github.com/ib-77/vrcdecode/pkg/vrc"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, AlgorithmNRV2E, cfg.Decoder.Algorithm)
	assert.Equal(t, 1<<20, cfg.MaxOutputBytes())
	assert.Equal(t, int64(1<<20), cfg.MaxRequestBytes())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 0, cfg.Batch.Workers)
	assert.Equal(t, ucl.NRV2E{MaxOutput: 1 << 20}, cfg.Decompressor())
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vrcdecode.toml")
	data := `
[decoder]
algorithm = "nrv2e"
max_output = "64 KiB"

[batch]
workers = 6

[http]
listen_ip = "127.0.0.1"
port = 9090

[log]
level = "debug"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64*1024, cfg.MaxOutputBytes())
	assert.Equal(t, 6, cfg.Batch.Workers)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// untouched keys keep their defaults
	assert.Equal(t, "1 MiB", cfg.HTTP.MaxRequestSize)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParse_AlgorithmNone(t *testing.T) {
	cfg, err := Parse([]byte("[decoder]\nalgorithm = \"none\"\n"))
	require.NoError(t, err)

	_, err = cfg.Decompressor().Decompress([]byte{1, 2, 3})
	assert.ErrorIs(t, err, vrc.ErrDecompressionDisabled)
	assert.Len(t, cfg.DecoderOptions(), 1)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		msg  string
	}{
		{name: "syntax", data: "[decoder\n", msg: "config:"},
		{name: "unknown key", data: "[decoder]\ncolour = \"red\"\n", msg: "colour"},
		{name: "algorithm", data: "[decoder]\nalgorithm = \"lz4\"\n", msg: "decoder.algorithm"},
		{name: "size", data: "[decoder]\nmax_output = \"lots\"\n", msg: "decoder.max_output"},
		{name: "zero size", data: "[decoder]\nmax_output = \"0\"\n", msg: "out of range"},
		{name: "request size", data: "[http]\nmax_request_size = \"-1\"\n", msg: "http.max_request_size"},
		{name: "port", data: "[http]\nport = 70000\n", msg: "http.port"},
		{name: "log format", data: "[log]\nformat = \"xml\"\n", msg: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
