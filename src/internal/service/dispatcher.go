// FILE: logship/src/internal/service/dispatcher.go
package service

import (
	"logship/src/internal/core"

	"golang.org/x/sync/errgroup"
)

// dispatcher runs batch deliveries in waves of at most limit goroutines.
// A full wave is joined before the next batch is accepted. Waves are never
// cancelled: once started, every delivery in a wave runs to completion.
type dispatcher struct {
	limit   int
	deliver func(core.Batch) error

	group   *errgroup.Group
	pending int
	waves   int
}

func newDispatcher(limit int, deliver func(core.Batch) error) *dispatcher {
	if limit <= 0 {
		limit = core.MaxConcurrentRequests
	}
	return &dispatcher{
		limit:   limit,
		deliver: deliver,
		group:   new(errgroup.Group),
	}
}

// submit starts delivery of b and joins the wave once it is full
func (d *dispatcher) submit(b core.Batch) error {
	d.group.Go(func() error {
		return d.deliver(b)
	})
	d.pending++

	if d.pending >= d.limit {
		return d.wait()
	}
	return nil
}

// wait joins the current wave and returns its first error
func (d *dispatcher) wait() error {
	if d.pending == 0 {
		return nil
	}
	err := d.group.Wait()
	d.group = new(errgroup.Group)
	d.pending = 0
	d.waves++
	return err
}
