package config

import (
	"github.com/bjaus/routesplit"
)

// Strategy names accepted in SessionsConfig.Strategy.
const (
	StrategyZigzag      = "zigzag"
	StrategyLeastLoaded = "least-loaded"
)

// DefaultDropField is the routing-destination column of the exports. Two
// export runs differ in it for otherwise identical lines.
const DefaultDropField = "OUTPERFORMROADNETDESTINATION"

// DefaultEntities are the legal entities the exports are known to carry.
var DefaultEntities = map[string]Entity{
	"ZA1": {Description: "BLOEM_PLAN", FirstDriver: "825196", FirstTrailer: "ST29PTAIL", ShippingCarrier: "0", VehicleID: "TT4X2TAIL"},
	"NA1": {Description: "Windhoek_PLAN", FirstDriver: "NA1-000002", FirstTrailer: "TT1001", ShippingCarrier: "0", VehicleID: "TT1002"},
	"UG1": {Description: "Rwenzori_PLAN", FirstDriver: "UG1-000001", FirstTrailer: "TT1003", ShippingCarrier: "INTERNAL", VehicleID: "TT1004"},
	"MZ1": {Description: "Chimoio_PLAN", FirstDriver: "MZ1-000001", FirstTrailer: "TT1002", ShippingCarrier: "0", VehicleID: "TT1003"},
}

// applyDefaults applies default values to configuration fields that are not set.
func applyDefaults(cfg *Config) {
	// Input defaults
	if cfg.Input.Pattern == "" {
		cfg.Input.Pattern = "*"
	}
	if cfg.Input.Exclusions == nil {
		cfg.Input.Exclusions = append([]string(nil), routesplit.DefaultExclusions...)
	}

	// Chunk defaults
	if cfg.Chunk.MaxLines == 0 {
		cfg.Chunk.MaxLines = routesplit.DefaultMaxLinesPerChunk
	}
	if cfg.Chunk.Declaration == "" {
		cfg.Chunk.Declaration = routesplit.DefaultFormat.Declaration
	}
	if cfg.Chunk.RootOpen == "" {
		cfg.Chunk.RootOpen = routesplit.DefaultFormat.RootOpen
	}
	if cfg.Chunk.RootClose == "" {
		cfg.Chunk.RootClose = routesplit.DefaultFormat.RootClose
	}

	// Records defaults
	if cfg.Records.OriginField == "" {
		cfg.Records.OriginField = routesplit.DefaultOriginField
	}
	if cfg.Records.RouteField == "" {
		cfg.Records.RouteField = routesplit.DefaultRouteField
	}
	if cfg.Records.DropFields == nil {
		cfg.Records.DropFields = []string{DefaultDropField}
	}
	if cfg.Records.PrefixField == "" {
		cfg.Records.PrefixField = routesplit.DefaultPrefixField
	}
	if cfg.Records.PrefixLength == 0 {
		cfg.Records.PrefixLength = routesplit.DefaultPrefixLength
	}

	// Sessions defaults
	if cfg.Sessions.Strategy == "" {
		cfg.Sessions.Strategy = StrategyZigzag
	}

	// Output defaults
	if cfg.Output.NATS.Stream == "" {
		cfg.Output.NATS.Stream = "ROUTESPLIT"
	}
	if cfg.Output.NATS.SubjectPrefix == "" {
		cfg.Output.NATS.SubjectPrefix = "routesplit.partition"
	}

	// Workers defaults
	if cfg.Workers.Reformat == 0 {
		cfg.Workers.Reformat = routesplit.DefaultReformatWorkers
	}
	if cfg.Workers.Parse == 0 {
		cfg.Workers.Parse = routesplit.DefaultParseWorkers
	}

	if cfg.Entities == nil {
		cfg.Entities = make(map[string]Entity, len(DefaultEntities))
		for code, e := range DefaultEntities {
			cfg.Entities[code] = e
		}
	}

	// Log defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Metrics defaults
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "routesplit"
	}
}
