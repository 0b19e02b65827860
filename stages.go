package routesplit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// execute runs every stage in order. Each stage sees the complete output of
// the previous one; nothing is handed to Load until all of them succeed.
func (p *Pipeline) execute(ctx context.Context, stats *Stats) error {
	chunker, err := NewChunker(p.resolveFormat(), p.resolveMaxLinesPerChunk())
	if err != nil {
		return fmt.Errorf("%s: %w", StageChunk, err)
	}
	keyFn := p.resolveKeyFunc()

	var files []RawExportFile
	err = p.stage(ctx, StageExtract, func() (err error) {
		files, err = p.runExtract(ctx)
		return err
	})
	if err != nil {
		return err
	}

	var lines []string
	err = p.stage(ctx, StageReformat, func() (err error) {
		lines, err = p.runReformat(ctx, files, stats)
		return err
	})
	if err != nil {
		return err
	}

	var docs []Document
	err = p.stage(ctx, StageChunk, func() error {
		docs = chunker.Chunk(lines)
		stats.documents.Store(int64(len(docs)))
		return nil
	})
	if err != nil {
		return err
	}

	var records []Record
	err = p.stage(ctx, StageParse, func() (err error) {
		records, err = p.runParse(ctx, docs, stats)
		return err
	})
	if err != nil {
		return err
	}

	if p.validator != nil {
		err = p.stage(ctx, StageValidate, func() error {
			return p.validator.Validate(ctx, records)
		})
		if err != nil {
			return err
		}
	}

	var groups []Group
	err = p.stage(ctx, StageGroup, func() error {
		groups = Aggregate(records, keyFn, p.resolveParseWorkers())
		stats.groups.Store(int64(len(groups)))
		return nil
	})
	if err != nil {
		return err
	}

	var assignment Assignment
	err = p.stage(ctx, StageAssign, func() (err error) {
		assignment, err = p.runAssign(ctx, groups)
		return err
	})
	if err != nil {
		return err
	}
	stats.sessions.Store(int64(len(assignment.Sessions())))

	var partitions []Partition
	err = p.stage(ctx, StagePartition, func() (err error) {
		partitions, err = Split(records, keyFn, assignment)
		return err
	})
	if err != nil {
		return err
	}

	for _, load := range assignment.Loads() {
		p.metrics.RecordSessionLoad(load)
		p.logger.InfoContext(ctx, "session assigned",
			"session", load.Session,
			"groups", load.Groups,
			"records", load.Records,
		)
	}

	return p.stage(ctx, StageLoad, func() error {
		return p.job.Load(ctx, &Result{
			Partitions: partitions,
			Assignment: assignment,
			Stats:      stats,
		})
	})
}

// stage times fn, reports it, and wraps its error with the stage name.
func (p *Pipeline) stage(ctx context.Context, s Stage, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", s, err)
	}

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.metrics.ObserveStage(s, elapsed, err)
	if err != nil {
		return fmt.Errorf("%s: %w", s, err)
	}

	p.logger.DebugContext(ctx, "stage complete", "stage", s, "elapsed", elapsed)
	return nil
}

// runExtract drains Job.Extract. Files keep their yield order.
func (p *Pipeline) runExtract(ctx context.Context) ([]RawExportFile, error) {
	var files []RawExportFile
	for f, err := range p.job.Extract(ctx) {
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// runReformat reformats and filters each file concurrently, then concatenates
// the surviving lines in file order. Results are stored by file index, so the
// order is fixed before any worker starts.
func (p *Pipeline) runReformat(ctx context.Context, files []RawExportFile, stats *Stats) ([]string, error) {
	filter := NewNoiseFilter(p.resolveExclusions()...)
	reportEvery := int64(p.resolveReportInterval())
	perFile := make([][]string, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.resolveReformatWorkers())

	for i := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			tokens, err := Reformat(files[i].Data)
			if err != nil {
				var malformed *MalformedInputError
				if errors.As(err, &malformed) {
					malformed.File = files[i].Name
				}
				return err
			}
			// The raw bytes are not needed past this point.
			files[i].Data = nil

			kept, excluded := filter.Apply(tokens)
			perFile[i] = kept
			stats.incTokenLines(int64(len(tokens)))
			stats.incExcluded(int64(excluded))

			n := stats.incFiles(1)
			if p.progress != nil && n/reportEvery > (n-1)/reportEvery {
				p.progress.OnProgress(ctx, stats)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, l := range perFile {
		total += len(l)
	}
	lines := make([]string, 0, total)
	for _, l := range perFile {
		lines = append(lines, l...)
	}
	return lines, nil
}

// runParse parses documents concurrently, concatenates their records in
// document order and removes duplicates.
func (p *Pipeline) runParse(ctx context.Context, docs []Document, stats *Stats) ([]Record, error) {
	loader := NewLoader(p.resolveDropFields()...)
	perDoc := make([][]Record, len(docs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.resolveParseWorkers())

	for i := range docs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			recs, err := loader.ParseDocument(docs[i])
			if err != nil {
				return err
			}
			perDoc[i] = recs
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var all []Record
	for _, recs := range perDoc {
		all = append(all, recs...)
	}

	kept, dups := Dedup(all)
	for _, d := range dups {
		p.logger.DebugContext(ctx, "duplicate record dropped", "index", d.Index, "first", d.FirstIndex)
		if p.dupHandler != nil {
			p.dupHandler.OnDuplicate(ctx, d)
		}
	}
	if len(dups) > 0 {
		p.logger.WarnContext(ctx, "duplicate records dropped", "count", len(dups))
	}

	stats.records.Store(int64(len(kept)))
	stats.duplicates.Store(int64(len(dups)))
	return kept, nil
}

// runAssign fetches the sessions, checks the precondition, and runs the
// strategy. The result of a custom strategy is verified to be total.
func (p *Pipeline) runAssign(ctx context.Context, groups []Group) (Assignment, error) {
	sessions, err := p.job.Sessions(ctx)
	if err != nil {
		return Assignment{}, err
	}
	if err := CheckFeasible(len(groups), sessions); err != nil {
		return Assignment{}, err
	}

	a, err := p.resolveAssigner().Assign(groups, sessions)
	if err != nil {
		return Assignment{}, err
	}
	if len(a.Groups) != len(groups) {
		return Assignment{}, fmt.Errorf("%w: %d of %d groups assigned", ErrUnassignedGroup, len(a.Groups), len(groups))
	}
	for _, g := range groups {
		if _, ok := a.SessionOf(g.Key); !ok {
			return Assignment{}, fmt.Errorf("%w: %s", ErrUnassignedGroup, g.Key)
		}
	}
	return a, nil
}
