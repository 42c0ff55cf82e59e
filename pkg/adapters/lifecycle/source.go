// Package lifecycle exposes note change events as a lifecycle.Source, the
// form `jotter watch` consumes them in.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/jotter/pkg/core"
)

type changeSource struct {
	in  <-chan core.Event
	out chan lifecycle.Event
}

// NewSource wraps a note event channel. Events() closes once the input
// closes or the context given to Start ends.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &changeSource{in: events, out: make(chan lifecycle.Event)}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *changeSource) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		close(s.out)
		return err
	}
	lifecycle.Go(ctx, s.forward)
	return nil
}

// forward copies note events to out until either side is done.
func (s *changeSource) forward(ctx context.Context) error {
	defer close(s.out)
	for {
		var (
			e  core.Event
			ok bool
		)
		select {
		case e, ok = <-s.in:
		case <-ctx.Done():
			return nil
		}
		if !ok {
			return nil
		}
		select {
		case s.out <- e:
		case <-ctx.Done():
			return nil
		}
	}
}
