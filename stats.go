package routesplit

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
)

// Stats provides run statistics with thread-safe access.
// Counter fields use atomic operations for safe concurrent access from worker goroutines.
type Stats struct {
	files      atomic.Int64
	tokenLines atomic.Int64
	excluded   atomic.Int64
	documents  atomic.Int64
	records    atomic.Int64
	duplicates atomic.Int64
	groups     atomic.Int64
	sessions   atomic.Int64
}

// Files returns the number of export files reformatted.
func (s *Stats) Files() int64 { return s.files.Load() }

// TokenLines returns the number of token lines produced by reformatting.
func (s *Stats) TokenLines() int64 { return s.tokenLines.Load() }

// Excluded returns the number of token lines dropped by the noise filter.
func (s *Stats) Excluded() int64 { return s.excluded.Load() }

// RecordLines returns the number of token lines that survived filtering.
func (s *Stats) RecordLines() int64 { return s.TokenLines() - s.Excluded() }

// Documents returns the number of chunked documents produced.
func (s *Stats) Documents() int64 { return s.documents.Load() }

// Records returns the number of records kept after deduplication.
func (s *Stats) Records() int64 { return s.records.Load() }

// Duplicates returns the number of duplicate records removed.
func (s *Stats) Duplicates() int64 { return s.duplicates.Load() }

// Groups returns the number of distinct groups.
func (s *Stats) Groups() int64 { return s.groups.Load() }

// Sessions returns the number of sessions assigned to.
func (s *Stats) Sessions() int64 { return s.sessions.Load() }

// StatsSnapshot is a plain copy of Stats for serialization.
type StatsSnapshot struct {
	Files       int64 `json:"files" yaml:"files"`
	TokenLines  int64 `json:"tokenLines" yaml:"tokenLines"`
	Excluded    int64 `json:"excluded" yaml:"excluded"`
	RecordLines int64 `json:"recordLines" yaml:"recordLines"`
	Documents   int64 `json:"documents" yaml:"documents"`
	Records     int64 `json:"records" yaml:"records"`
	Duplicates  int64 `json:"duplicates" yaml:"duplicates"`
	Groups      int64 `json:"groups" yaml:"groups"`
	Sessions    int64 `json:"sessions" yaml:"sessions"`
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Files:       s.Files(),
		TokenLines:  s.TokenLines(),
		Excluded:    s.Excluded(),
		RecordLines: s.RecordLines(),
		Documents:   s.Documents(),
		Records:     s.Records(),
		Duplicates:  s.Duplicates(),
		Groups:      s.Groups(),
		Sessions:    s.Sessions(),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("files", s.Files()),
		slog.Int64("record_lines", s.RecordLines()),
		slog.Int64("excluded", s.Excluded()),
		slog.Int64("documents", s.Documents()),
		slog.Int64("records", s.Records()),
		slog.Int64("duplicates", s.Duplicates()),
		slog.Int64("groups", s.Groups()),
		slog.Int64("sessions", s.Sessions()),
	)
}

// MarshalJSON implements json.Marshaler for Stats serialization.
func (s *Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalJSON implements json.Unmarshaler for Stats deserialization.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var v StatsSnapshot
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.files.Store(v.Files)
	s.tokenLines.Store(v.TokenLines)
	s.excluded.Store(v.Excluded)
	s.documents.Store(v.Documents)
	s.records.Store(v.Records)
	s.duplicates.Store(v.Duplicates)
	s.groups.Store(v.Groups)
	s.sessions.Store(v.Sessions)
	return nil
}

// Internal increment methods. These return the new value after incrementing,
// which is essential for race-free progress tracking across concurrent workers.
func (s *Stats) incFiles(n int64) int64      { return s.files.Add(n) }
func (s *Stats) incTokenLines(n int64) int64 { return s.tokenLines.Add(n) }
func (s *Stats) incExcluded(n int64) int64   { return s.excluded.Add(n) }
