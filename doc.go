// Package routesplit turns a pile of single-line XML export files into
// balanced per-session record sets.
//
// A run repairs and filters the raw exports into well-formed, size-bounded
// documents, loads their records, groups the records by a routing key
// (origin plus route), and distributes the groups over a fixed list of
// sessions so that each session receives a similar number of records. Groups
// are never split.
//
// # Quick Start
//
// Implement the required Job interface:
//
//	type MyJob struct {
//	    dir      string
//	    sessions []routesplit.SessionID
//	}
//
//	func (j *MyJob) Extract(ctx context.Context) iter.Seq2[routesplit.RawExportFile, error] {
//	    return func(yield func(routesplit.RawExportFile, error) bool) {
//	        entries, err := os.ReadDir(j.dir) // sorted by name
//	        if err != nil {
//	            yield(routesplit.RawExportFile{}, err)
//	            return
//	        }
//	        for _, e := range entries {
//	            data, err := os.ReadFile(filepath.Join(j.dir, e.Name()))
//	            if !yield(routesplit.RawExportFile{Name: e.Name(), Data: data}, err) {
//	                return
//	            }
//	        }
//	    }
//	}
//
//	func (j *MyJob) Sessions(ctx context.Context) ([]routesplit.SessionID, error) {
//	    return j.sessions, nil
//	}
//
//	func (j *MyJob) Load(ctx context.Context, res *routesplit.Result) error {
//	    for _, p := range res.Partitions {
//	        // write p.Records for p.Session
//	    }
//	    return nil
//	}
//
//	err := routesplit.New(&MyJob{dir: "exports", sessions: ids}).Run(ctx)
//
// # Stages
//
//  1. Reformat: each export is split after every '>' into token lines.
//  2. Filter: lines carrying the XML declaration, the document root, or the
//     session table wrapper are dropped.
//  3. Chunk: the surviving lines of all files, in file order, are cut into
//     windows of MaxLinesPerChunk lines and each window is wrapped as its own
//     document.
//  4. Parse: documents are decoded into records; exact duplicates are
//     removed, keeping the first.
//  5. Group: records are counted per GroupKey and ordered largest first.
//  6. Assign: groups are placed on sessions by an Assigner (Zigzag by default).
//  7. Partition: records are split into one slice per session.
//
// Every stage sees the complete output of the one before it. A failure in any
// stage aborts the run and Load is never called, so a run either produces
// every partition or none.
//
// # Configuration
//
// Every configuration knob follows the same pattern: a WithXxx builder method and
// a matching Xxx interface with an Xxx() method. The builder always takes priority.
//
//	err := routesplit.New(job).
//	    WithMaxLinesPerChunk(5000).
//	    WithReformatWorkers(8).
//	    WithParseWorkers(4).
//	    WithGroupFields("WAREHOUSEID", "ROADNETROUTE").
//	    WithAssigner(routesplit.NewLeastLoaded()).
//	    Run(ctx)
//
// Configuration priority (highest to lowest):
//  1. WithXxx() method overrides
//  2. Interface implementations
//  3. Default values
//
// # Assignment
//
// Zigzag walks the session list forward and back, handing out groups largest
// first. For counts [50 30 20 20 10 10] over three sessions it yields totals
// [60 40 40]. LeastLoaded instead always picks the session with the smallest
// running total. Both refuse to run with more sessions than groups.
//
// # Lifecycle Hooks
//
// Implement Starter and/or Stopper for setup and cleanup, Validator to reject
// a record set before it is partitioned, DuplicateHandler to observe records
// removed by deduplication, and ProgressReporter for periodic progress while
// files are reformatted.
package routesplit
