package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bjaus/routesplit"
)

func TestLoadConfig(t *testing.T) {
	yamlConfig := `
input:
  dir: /data/exports
  pattern: "*.xml"
chunk:
  max_lines: 2000
records:
  drop_fields: []
sessions:
  file: /data/sessionIDs.csv
  strategy: least-loaded
output:
  dir: /data/inbound
  nats:
    url: nats://localhost:4222
workers:
  reformat: 8
entities:
  ZA1:
    description: BLOEM_PLAN
log:
  level: debug
  format: json
`
	path := filepath.Join(t.TempDir(), "routesplit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "/data/exports", cfg.Input.Dir)
	require.Equal(t, "*.xml", cfg.Input.Pattern)
	require.Equal(t, 2000, cfg.Chunk.MaxLines)
	require.Equal(t, StrategyLeastLoaded, cfg.Sessions.Strategy)
	require.Equal(t, 8, cfg.Workers.Reformat)
	require.Equal(t, routesplit.DefaultParseWorkers, cfg.Workers.Parse)
	require.Equal(t, []string{"ZA1"}, cfg.EntityCodes())
	require.Equal(t, "BLOEM_PLAN", cfg.Entities["ZA1"].Description)

	// An explicit empty list is kept.
	require.Empty(t, cfg.Records.DropFields)
	require.NotNil(t, cfg.Records.DropFields)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read config file")

	_, err = Parse([]byte("input: [not, a, map]"))
	require.ErrorContains(t, err, "failed to parse config file")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.Equal(t, routesplit.DefaultMaxLinesPerChunk, cfg.Chunk.MaxLines)
	require.Equal(t, routesplit.DefaultFormat, cfg.Chunk.Format())
	require.Equal(t, routesplit.DefaultExclusions, cfg.Input.Exclusions)
	require.Equal(t, routesplit.DefaultOriginField, cfg.Records.OriginField)
	require.Equal(t, routesplit.DefaultRouteField, cfg.Records.RouteField)
	require.Equal(t, []string{DefaultDropField}, cfg.Records.DropFields)
	require.Equal(t, StrategyZigzag, cfg.Sessions.Strategy)
	require.ElementsMatch(t, []string{"ZA1", "NA1", "UG1", "MZ1"}, cfg.EntityCodes())
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)

	// Defaults alone lack the run's locations.
	require.Error(t, cfg.Validate())
}

func TestDefault_EntitiesAreCopied(t *testing.T) {
	cfg := Default()
	delete(cfg.Entities, "ZA1")
	require.Contains(t, DefaultEntities, "ZA1")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Input.Dir = "in"
		cfg.Output.Dir = "out"
		cfg.Sessions.IDs = []string{"S1"}
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "no input", mutate: func(c *Config) { c.Input.Dir = "" }, errMsg: "input dir"},
		{name: "bad pattern", mutate: func(c *Config) { c.Input.Pattern = "[" }, errMsg: "invalid input pattern"},
		{name: "zero max lines", mutate: func(c *Config) { c.Chunk.MaxLines = -1 }, errMsg: "max_lines"},
		{name: "no sessions", mutate: func(c *Config) { c.Sessions.IDs = nil }, errMsg: "sessions"},
		{name: "bad strategy", mutate: func(c *Config) { c.Sessions.Strategy = "random" }, errMsg: "invalid strategy"},
		{name: "no output", mutate: func(c *Config) { c.Output.Dir = "" }, errMsg: "output"},
		{name: "nats only", mutate: func(c *Config) { c.Output.Dir = ""; c.Output.NATS.URL = "nats://x" }},
		{name: "bad workers", mutate: func(c *Config) { c.Workers.Parse = -2 }, errMsg: "worker"},
		{name: "no entities", mutate: func(c *Config) { c.Entities = map[string]Entity{} }, errMsg: "entity"},
		{name: "bad entity code", mutate: func(c *Config) { c.Entities["TOOLONG"] = Entity{} }, errMsg: "TOOLONG"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, errMsg: "log level"},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, errMsg: "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.errMsg)
		})
	}
}
