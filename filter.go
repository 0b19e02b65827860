package routesplit

import "strings"

// DefaultExclusions are the markers of lines that carry no record data: the
// session table wrapper entity, the document root open/close tags, and the
// XML declaration.
var DefaultExclusions = []string{
	"CCBROADNETWORKBENCHSESSIONTABLEENTITY",
	"Document>",
	"xml version=",
}

// NoiseFilter drops structural lines from a token line sequence. Matching is
// a case-sensitive substring test applied to each line on its own.
type NoiseFilter struct {
	patterns []string
}

// NewNoiseFilter creates a filter for the given patterns. With no patterns
// DefaultExclusions are used. Empty patterns are ignored since they would
// match every line.
func NewNoiseFilter(patterns ...string) *NoiseFilter {
	if len(patterns) == 0 {
		patterns = DefaultExclusions
	}
	f := &NoiseFilter{patterns: make([]string, 0, len(patterns))}
	for _, p := range patterns {
		if p != "" {
			f.patterns = append(f.patterns, p)
		}
	}
	return f
}

// Excludes reports whether line matches any exclusion pattern.
func (f *NoiseFilter) Excludes(line string) bool {
	for _, p := range f.patterns {
		if strings.Contains(line, p) {
			return true
		}
	}
	return false
}

// Apply returns the record lines of lines, in order, and how many lines were
// dropped.
func (f *NoiseFilter) Apply(lines []string) (kept []string, excluded int) {
	kept = make([]string, 0, len(lines))
	for _, line := range lines {
		if f.Excludes(line) {
			excluded++
			continue
		}
		kept = append(kept, line)
	}
	return kept, excluded
}
