package routesplit

// Default configuration values.
const (
	DefaultMaxLinesPerChunk = 5000
	DefaultReformatWorkers  = 1
	DefaultParseWorkers     = 1
	DefaultReportInterval   = 100
)

// MaxLinesPerChunk controls how many record lines go into each chunked
// document. Implement this interface to set the chunk size from the job
// struct rather than the pipeline builder.
//
// The value can be overridden at runtime via WithMaxLinesPerChunk, which takes
// precedence. If neither is set, DefaultMaxLinesPerChunk (5000) is used.
//
// Tuning guidance:
//   - The limit exists to bound per-document parser memory; exports with very
//     wide records may want a smaller value
//   - A chunk boundary that falls inside a multi-line record makes both
//     neighbouring documents unparseable, so exports whose records span
//     several lines need a limit that is a multiple of the record height
//
// Example:
//
//	func (j *MyJob) MaxLinesPerChunk() int { return 2000 }
type MaxLinesPerChunk interface {
	// MaxLinesPerChunk returns the record line limit per document.
	MaxLinesPerChunk() int
}

// ReformatWorkers controls parallelism for the reformat/filter stage, which
// runs once per export file. Files are independent, and results are placed by
// file index, so the worker count never changes the output.
//
// The value can be overridden at runtime via WithReformatWorkers, which takes
// precedence. If neither is set, DefaultReformatWorkers (1) is used.
//
// Example:
//
//	func (j *MyJob) ReformatWorkers() int { return runtime.NumCPU() }
type ReformatWorkers interface {
	// ReformatWorkers returns the number of concurrent reformat workers.
	ReformatWorkers() int
}

// ParseWorkers controls parallelism for parsing chunked documents and for
// counting group sizes. Records are concatenated in document order regardless
// of the worker count.
//
// The value can be overridden at runtime via WithParseWorkers, which takes
// precedence. If neither is set, DefaultParseWorkers (1) is used.
//
// Example:
//
//	func (j *MyJob) ParseWorkers() int { return 4 }
type ParseWorkers interface {
	// ParseWorkers returns the number of concurrent parse workers.
	ParseWorkers() int
}

// Exclusions sets the noise filter patterns. If neither this nor
// WithExclusions is used, DefaultExclusions apply.
type Exclusions interface {
	Exclusions() []string
}

// Format sets the wrapper written around each chunked document. If neither
// this nor WithFormat is used, DefaultFormat applies.
type Format interface {
	Format() DocumentFormat
}

// GroupFields names the record fields that form the group key. If neither
// this nor WithGroupFields is used, DefaultOriginField and DefaultRouteField
// apply.
type GroupFields interface {
	GroupFields() (origin, route string)
}

// DropFields names fields removed from every record before deduplication,
// so that records differing only in those fields count as duplicates.
type DropFields interface {
	DropFields() []string
}

// AssignmentStrategy selects the Assigner. If neither this nor WithAssigner
// is used, Zigzag applies.
type AssignmentStrategy interface {
	AssignmentStrategy() Assigner
}

// resolveMaxLinesPerChunk returns the effective chunk size.
// Priority: WithMaxLinesPerChunk > MaxLinesPerChunk interface > DefaultMaxLinesPerChunk.
func (p *Pipeline) resolveMaxLinesPerChunk() int {
	if p.maxLines != nil {
		return *p.maxLines
	}
	if v, ok := p.job.(MaxLinesPerChunk); ok {
		return v.MaxLinesPerChunk()
	}
	return DefaultMaxLinesPerChunk
}

// resolveReformatWorkers returns the effective reformat worker count.
// Priority: WithReformatWorkers > ReformatWorkers interface > DefaultReformatWorkers.
func (p *Pipeline) resolveReformatWorkers() int {
	if p.reformatWorkers != nil {
		return *p.reformatWorkers
	}
	if v, ok := p.job.(ReformatWorkers); ok {
		return max(v.ReformatWorkers(), 1)
	}
	return DefaultReformatWorkers
}

// resolveParseWorkers returns the effective parse worker count.
// Priority: WithParseWorkers > ParseWorkers interface > DefaultParseWorkers.
func (p *Pipeline) resolveParseWorkers() int {
	if p.parseWorkers != nil {
		return *p.parseWorkers
	}
	if v, ok := p.job.(ParseWorkers); ok {
		return max(v.ParseWorkers(), 1)
	}
	return DefaultParseWorkers
}

// resolveReportInterval returns the effective report interval.
// Priority: WithReportInterval > ReportInterval interface > DefaultReportInterval.
func (p *Pipeline) resolveReportInterval() int {
	if p.reportInterval != nil {
		return *p.reportInterval
	}
	if v, ok := p.job.(ReportInterval); ok && v.ReportInterval() > 0 {
		return v.ReportInterval()
	}
	return DefaultReportInterval
}

func (p *Pipeline) resolveExclusions() []string {
	if p.exclusions != nil {
		return p.exclusions
	}
	if v, ok := p.job.(Exclusions); ok {
		return v.Exclusions()
	}
	return DefaultExclusions
}

func (p *Pipeline) resolveFormat() DocumentFormat {
	if p.format != nil {
		return *p.format
	}
	if v, ok := p.job.(Format); ok {
		return v.Format()
	}
	return DefaultFormat
}

func (p *Pipeline) resolveKeyFunc() KeyFunc {
	if p.groupFields != nil {
		return FieldKey(p.groupFields[0], p.groupFields[1])
	}
	if v, ok := p.job.(GroupFields); ok {
		return FieldKey(v.GroupFields())
	}
	return FieldKey(DefaultOriginField, DefaultRouteField)
}

func (p *Pipeline) resolveDropFields() []string {
	if p.dropFields != nil {
		return p.dropFields
	}
	if v, ok := p.job.(DropFields); ok {
		return v.DropFields()
	}
	return nil
}

func (p *Pipeline) resolveAssigner() Assigner {
	if p.assigner != nil {
		return p.assigner
	}
	if v, ok := p.job.(AssignmentStrategy); ok {
		if a := v.AssignmentStrategy(); a != nil {
			return a
		}
	}
	return NewZigzag()
}
