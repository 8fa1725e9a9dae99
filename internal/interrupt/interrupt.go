// Package interrupt latches an out-of-band operator pause request (SIGINT)
// so the run loop can honor it at its next safe point. The listener never
// mutates run state or executes anything itself; it only holds the one-slot
// notification the loop polls.
package interrupt

import (
	"os"
	"os/signal"
)

// Controller owns the pause-signal channel for one run
type Controller struct {
	ch chan os.Signal
}

// New creates a controller and starts listening for SIGINT
func New() *Controller {
	c := &Controller{ch: make(chan os.Signal, 1)}
	signal.Notify(c.ch, os.Interrupt)
	return c
}

// Pending reports and consumes a latched pause request. Non-blocking; safe
// to call at every loop safe point.
func (c *Controller) Pending() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}

// Trigger latches a pause request programmatically. The channel holds one
// slot, so repeated triggers collapse into a single pause.
func (c *Controller) Trigger() {
	select {
	case c.ch <- os.Interrupt:
	default:
	}
}

// Stop unregisters the signal listener
func (c *Controller) Stop() {
	signal.Stop(c.ch)
}
