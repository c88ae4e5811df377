package notify

import (
	"context"
	"io"

	"go.uber.org/multierr"

	"poagov/internal/model"
)

// Sink delivers one notification.
type Sink interface {
	Dispatch(ctx context.Context, n model.Notification) error
}

// Fanout dispatches every notification to all sinks, one attempt each.
type Fanout struct {
	sinks []Sink
}

// NewFanout returns a Fanout over sinks. Nil sinks are dropped.
func NewFanout(sinks ...Sink) *Fanout {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Fanout{sinks: out}
}

// Len returns the number of configured sinks.
func (f *Fanout) Len() int {
	return len(f.sinks)
}

// Dispatch calls every sink in order and returns their combined errors.
// A failing sink does not stop the others.
func (f *Fanout) Dispatch(ctx context.Context, n model.Notification) error {
	var err error
	for _, s := range f.sinks {
		err = multierr.Append(err, s.Dispatch(ctx, n))
	}
	return err
}

// Close closes every sink that holds resources.
func (f *Fanout) Close() error {
	var err error
	for _, s := range f.sinks {
		if c, ok := s.(io.Closer); ok {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}
