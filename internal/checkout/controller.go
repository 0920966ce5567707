// Package checkout drives the shipping-address form: it masks the postal-code
// field, looks the code up in a postal directory and fills in the street,
// district, city and state.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dukerupert/coffee-delivery/internal/address"
	"github.com/dukerupert/coffee-delivery/internal/cep"
	"github.com/dukerupert/coffee-delivery/internal/form"
	"github.com/dukerupert/coffee-delivery/internal/telemetry"
)

// Phase is where the postal-code field is in its lifecycle.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhasePartialEntry
	PhaseCompleteUnresolved
	PhaseCompleteResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhasePartialEntry:
		return "partial"
	case PhaseCompleteUnresolved:
		return "unresolved"
	case PhaseCompleteResolved:
		return "resolved"
	}
	return "unknown"
}

// AddressController owns the interaction between the postal-code field and
// the fields derived from it.
//
// Change events and lookup completions are serialised by mu. Every lookup is
// tagged with a sequence number; only the answer to the most recent request
// may touch the form, and only while the field still holds the code that
// request was issued for.
type AddressController struct {
	form   form.Form
	dir    address.Directory
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	seq      uint64
	editSeq  uint64
	pending  bool
	resolved bool
	settled  chan struct{}
	closed   bool
}

// NewAddressController creates a controller for f backed by dir.
func NewAddressController(f form.Form, dir address.Directory, logger *slog.Logger) *AddressController {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AddressController{
		form:   f,
		dir:    dir,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Change applies one edit of the postal-code field. raw is whatever the
// input now contains. Input with more than eight digits is ignored and the
// returned Input is marked Rejected.
//
// A complete code that differs from the one already in the field starts a
// lookup in the background; Change does not wait for it.
func (c *AddressController) Change(raw string) cep.Input {
	in := cep.Apply(raw)
	if in.Rejected {
		return in
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.changeLocked(in)
	return in
}

// ChangeSeq is Change for clients that number their edits. Requests for
// successive keystrokes can arrive out of order; an edit numbered at or below
// the last one applied is dropped and ok is false. seq 0 means unnumbered
// and is always applied without moving the watermark.
func (c *AddressController) ChangeSeq(seq uint64, raw string) (in cep.Input, ok bool) {
	in = cep.Apply(raw)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != 0 {
		if seq <= c.editSeq {
			c.logger.Debug("dropping out-of-order cep edit", "seq", seq, "latest_seq", c.editSeq)
			return in, false
		}
		c.editSeq = seq
	}
	if !in.Rejected {
		c.changeLocked(in)
	}
	return in, true
}

func (c *AddressController) changeLocked(in cep.Input) {
	prev := c.form.Watch(form.FieldCEP)

	if !cep.IsComplete(in.Digits) {
		// Editing a complete code clears everything it filled in, before
		// the partial value lands.
		if len(prev) == cep.MaskedLength {
			c.resetLocked()
		}
		c.pending = false
		c.resolved = false
	} else if in.Digits != cep.Digits(prev) && !c.closed {
		c.triggerLocked(in.Digits)
	}

	c.form.SetValue(form.FieldCEP, in.Display)
}

// Phase reports the current state of the postal-code field.
func (c *AddressController) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := cep.Digits(c.form.Watch(form.FieldCEP))
	switch {
	case len(d) == 0:
		return PhaseEmpty
	case len(d) < cep.Length:
		return PhasePartialEntry
	case c.resolved:
		return PhaseCompleteResolved
	}
	return PhaseCompleteUnresolved
}

// Pending reports whether the latest lookup is still outstanding.
func (c *AddressController) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Settle blocks until the latest lookup has been applied or discarded, or
// ctx is done. It returns immediately when nothing is outstanding.
func (c *AddressController) Settle(ctx context.Context) error {
	for {
		c.mu.Lock()
		ch, pending := c.settled, c.pending
		c.mu.Unlock()

		if !pending || ch == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
			// A newer request may have been issued meanwhile; look again.
		}
	}
}

// Close cancels any outstanding lookup and waits for it to finish. Change
// still masks input after Close but no longer starts lookups.
func (c *AddressController) Close() {
	c.mu.Lock()
	c.closed = true
	c.pending = false
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *AddressController) resetLocked() {
	for _, f := range form.DerivedFields {
		c.form.SetValue(f, "")
	}
	c.form.SetValue(form.FieldNumber, "")
	c.form.SetValue(form.FieldComplement, "")

	if telemetry.Checkout != nil {
		telemetry.Checkout.FieldResets.Inc()
	}
}

func (c *AddressController) triggerLocked(code string) {
	c.seq++
	c.pending = true
	c.resolved = false
	done := make(chan struct{})
	c.settled = done

	if telemetry.Checkout != nil {
		telemetry.Checkout.LookupsTriggered.Inc()
	}

	c.wg.Add(1)
	go c.lookup(c.seq, code, done)
}

func (c *AddressController) lookup(seq uint64, code string, done chan struct{}) {
	defer c.wg.Done()
	defer close(done)

	result, err := c.dir.Lookup(c.ctx, code)

	c.mu.Lock()
	defer c.mu.Unlock()

	latest := seq == c.seq
	if latest {
		c.pending = false
	}

	if err != nil {
		if c.closed && errors.Is(err, context.Canceled) {
			c.discard("closed")
			return
		}
		// Best effort: the customer can still type the address by hand.
		c.logger.Warn("cep lookup failed", "cep", code, "error", err)
		telemetry.AddBreadcrumb("checkout", "cep lookup failed", map[string]interface{}{"cep": code})
		c.discard("error")
		return
	}

	if !latest || cep.Digits(c.form.Watch(form.FieldCEP)) != code {
		c.logger.Debug("discarding stale cep lookup", "cep", code, "seq", seq, "latest_seq", c.seq)
		c.discard("stale")
		return
	}

	c.form.SetValue(form.FieldStreet, result.Street)
	c.form.SetValue(form.FieldDistrict, result.District)
	c.form.SetValue(form.FieldCity, result.City)
	c.form.SetValue(form.FieldState, result.State)
	c.resolved = true

	if result.NotFound {
		c.logger.Info("cep not found", "cep", code)
		return
	}
	c.form.SetFocus(form.FieldNumber)
}

func (c *AddressController) discard(reason string) {
	if telemetry.Checkout != nil {
		telemetry.Checkout.LookupsDiscarded.WithLabelValues(reason).Inc()
	}
}
