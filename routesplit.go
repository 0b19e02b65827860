package routesplit

import (
	"context"
	"iter"
)

// Stage identifies where in the pipeline an event occurred.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageReformat  Stage = "reformat"
	StageChunk     Stage = "chunk"
	StageParse     Stage = "parse"
	StageValidate  Stage = "validate"
	StageGroup     Stage = "group"
	StageAssign    Stage = "assign"
	StagePartition Stage = "partition"
	StageLoad      Stage = "load"
)

// RawExportFile is one unprocessed export file. Name is used in error messages
// and has no other meaning to the pipeline.
type RawExportFile struct {
	Name string
	Data []byte
}

// SessionID identifies one downstream consumer.
type SessionID string

// Result is everything a run produces. It is handed to Job.Load once all
// stages have succeeded.
type Result struct {
	// Partitions holds one entry per session, in session-list order.
	Partitions []Partition

	// Assignment maps every group to its session.
	Assignment Assignment

	// Stats is the run's final counters.
	Stats *Stats
}

// Job defines the inputs and the output of a run. This is the only required
// interface to implement.
//
// The pipeline reads every file from Extract before doing any work that
// depends on the whole record set, and calls Load exactly once, after every
// stage has succeeded. A failed run never reaches Load, so a Load that writes
// all partitions atomically leaves no partial output behind.
type Job interface {
	// Extract yields the export files in file-processing order. The yield
	// order defines the order in which record lines are concatenated before
	// chunking, so it must be deterministic.
	Extract(ctx context.Context) iter.Seq2[RawExportFile, error]

	// Sessions returns the ordered list of session IDs to distribute over.
	Sessions(ctx context.Context) ([]SessionID, error)

	// Load receives the partitioned result.
	Load(ctx context.Context, result *Result) error
}
