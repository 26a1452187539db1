// Package handler defines the consumer side of record retrieval: the
// engines pull records from the platform and push each one through a
// Handler, whose continuation predicate decides whether retrieval goes on.
package handler

import (
	"time"

	"github.com/larkerhq/larker/internal/twitter"
)

// Handler consumes records dispatched by an engine.
type Handler interface {
	// Handle consumes one record. The record is owned by the engine and
	// must not be mutated; handlers may copy or serialize it.
	Handle(rec twitter.Record) error

	// DoContinue reports whether the engine should keep pulling.
	DoContinue() bool

	// OnFinish runs cleanup and prints a summary. Engines call it
	// exactly once, when retrieval terminates normally.
	OnFinish()

	// HandlerState exposes the shared bookkeeping fields.
	HandlerState() *State
}

// State is the bookkeeping every handler carries.
type State struct {
	// Counter is the number of records processed since the last reset.
	// It is advanced by Dispatch, never by handlers themselves.
	Counter int

	// Limit caps Counter before the default continuation predicate
	// turns false.
	Limit int

	// DoStop is a sticky early-termination flag set by handler logic
	// such as a date-boundary breach.
	DoStop bool

	// MaxID is the pagination cursor: the upper id bound for the next
	// historical page. Zero means no cursor yet.
	MaxID int64

	// Repeat switches the file writer from stopping at Limit to
	// rotating output files every Limit records.
	Repeat bool

	// DateLimit is an optional timestamp boundary that stops
	// collection once a record crosses it.
	DateLimit time.Time
}

// HandlerState satisfies the Handler interface for embedders.
func (s *State) HandlerState() *State { return s }

// DoContinue is the default continuation policy.
func (s *State) DoContinue() bool { return s.Counter < s.Limit }

// Dispatch advances the handler's counter, hands it the record, and
// reports whether retrieval should continue. All engines feed records
// through here so the counter has a single owner.
func Dispatch(h Handler, rec twitter.Record) (bool, error) {
	h.HandlerState().Counter++
	if err := h.Handle(rec); err != nil {
		return false, err
	}
	return h.DoContinue(), nil
}

// Basic is the minimal handler: it caps the number of records retrieved
// and nothing else. The search engine installs one when no handler has
// been registered.
type Basic struct {
	State
}

// NewBasic creates a count-capping handler.
func NewBasic(limit int) *Basic {
	return &Basic{State: State{Limit: limit}}
}

func (b *Basic) Handle(twitter.Record) error { return nil }

func (b *Basic) OnFinish() {}
