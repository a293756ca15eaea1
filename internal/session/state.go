// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the lifecycle of an award search: idle, searching,
// and settled in success or error. State changes go through Transition, a
// pure function; Controller drives it from submits and lookup results.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pdiddy/research-crawler/pkg/types"
)

// Status is the phase of a query session.
type Status int

const (
	Idle Status = iota
	Searching
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText renders the status by name in JSON and YAML output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrorKind tells a rejected submit apart from a failed lookup.
type ErrorKind string

const (
	NoError         ErrorKind = ""
	ValidationError ErrorKind = "validation"
	TransportError  ErrorKind = "transport"
)

// Status messages shown alongside the state.
const (
	MessageIdle       = "Ready to search award records."
	MessageEmptyTerm  = "Please enter a name to search."
	messageSearching  = "Searching NSTC award records for %q..."
	messageFoundCount = "Found %d award(s) for %q."
)

// State is a snapshot of a query session.
type State struct {
	// Query identifies the submit this state belongs to. Lookup results
	// carrying any other ID are stale and ignored.
	Query uuid.UUID `json:"query_id" yaml:"query_id"`

	// Term is the trimmed search term of that submit.
	Term string `json:"term" yaml:"term"`

	Status Status `json:"status" yaml:"status"`

	// Records holds the lookup result while Status is Success and is
	// empty otherwise.
	Records []types.AwardRecord `json:"records" yaml:"records"`

	// Message is the status line for the user: progress, result count, or
	// the error text when Status is Error.
	Message string `json:"message" yaml:"message"`

	// ErrorKind is set when Status is Error.
	ErrorKind ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
}

// NewState returns the initial, idle state.
func NewState() State {
	return State{Status: Idle, Message: MessageIdle}
}

// ErrorMessage returns the error text, or "" unless Status is Error.
func (s State) ErrorMessage() string {
	if s.Status != Error {
		return ""
	}
	return s.Message
}

// clone returns a copy whose Records slice does not alias s.
func (s State) clone() State {
	if s.Records != nil {
		records := make([]types.AwardRecord, len(s.Records))
		copy(records, s.Records)
		s.Records = records
	}
	return s
}

// Event is an input to Transition. The concrete types are Submitted,
// Rejected, Resolved, and Failed.
type Event interface {
	event()
}

// Submitted starts a lookup for a non-empty, trimmed term.
type Submitted struct {
	ID   uuid.UUID
	Term string
}

// Rejected records a submit that failed validation.
type Rejected struct {
	Message string
}

// Resolved delivers the records of lookup ID.
type Resolved struct {
	ID      uuid.UUID
	Records []types.AwardRecord
}

// Failed delivers the failure of lookup ID.
type Failed struct {
	ID      uuid.UUID
	Message string
}

func (Submitted) event() {}
func (Rejected) event()  {}
func (Resolved) event()  {}
func (Failed) event()    {}

// Transition applies e to s and returns the next state. The boolean is
// false when e does not apply, in which case s is returned unchanged: a
// result for a lookup that is no longer the active one, or one arriving
// after the session has left Searching.
func Transition(s State, e Event) (State, bool) {
	switch e := e.(type) {
	case Submitted:
		return State{
			Query:   e.ID,
			Term:    e.Term,
			Status:  Searching,
			Records: []types.AwardRecord{},
			Message: fmt.Sprintf(messageSearching, e.Term),
		}, true

	case Rejected:
		msg := e.Message
		if msg == "" {
			msg = MessageEmptyTerm
		}
		return State{
			Status:    Error,
			Records:   []types.AwardRecord{},
			Message:   msg,
			ErrorKind: ValidationError,
		}, true

	case Resolved:
		if !s.awaiting(e.ID) {
			return s, false
		}
		records := e.Records
		if records == nil {
			records = []types.AwardRecord{}
		}
		return State{
			Query:   s.Query,
			Term:    s.Term,
			Status:  Success,
			Records: records,
			Message: fmt.Sprintf(messageFoundCount, len(records), s.Term),
		}, true

	case Failed:
		if !s.awaiting(e.ID) {
			return s, false
		}
		return State{
			Query:     s.Query,
			Term:      s.Term,
			Status:    Error,
			Records:   []types.AwardRecord{},
			Message:   e.Message,
			ErrorKind: TransportError,
		}, true
	}
	return s, false
}

// awaiting reports whether s is waiting on the lookup with the given ID.
func (s State) awaiting(id uuid.UUID) bool {
	return s.Status == Searching && id != uuid.Nil && s.Query == id
}
