package sink

import (
	"context"
	"errors"

	"github.com/bjaus/routesplit"
)

// Loader is anything that accepts a finished run.
type Loader interface {
	Load(ctx context.Context, res *routesplit.Result) error
}

// Stager is a Loader that can write a run aside first and make it visible in
// a separate step.
type Stager interface {
	Loader
	Stage(ctx context.Context, res *routesplit.Result) (Staged, error)
}

// Staged is output written aside by a Stager. Exactly one of Commit or
// Discard should be called.
type Staged interface {
	Commit() error
	Discard() error
}

var (
	_ Loader = (*FileSink)(nil)
	_ Loader = (*BusSink)(nil)
	_ Loader = Multi(nil)
	_ Stager = (*FileSink)(nil)
)

// Multi loads into several sinks as one unit. Stagers are staged first, then
// the remaining sinks are loaded in order, and only when all of them have
// succeeded are the staged outputs committed. Any error before the commit
// discards everything staged, so a failing sink leaves no staged output
// visible.
type Multi []Loader

// Load stages, loads, then commits.
func (m Multi) Load(ctx context.Context, res *routesplit.Result) (err error) {
	var staged []Staged
	defer func() {
		if err != nil {
			for _, s := range staged {
				err = errors.Join(err, s.Discard())
			}
		}
	}()

	for _, l := range m {
		if s, ok := l.(Stager); ok {
			st, err := s.Stage(ctx, res)
			if err != nil {
				return err
			}
			staged = append(staged, st)
		}
	}

	for _, l := range m {
		if _, ok := l.(Stager); ok {
			continue
		}
		if err := l.Load(ctx, res); err != nil {
			return err
		}
	}

	for len(staged) > 0 {
		if err := staged[0].Commit(); err != nil {
			return err
		}
		staged = staged[1:]
	}
	return nil
}
