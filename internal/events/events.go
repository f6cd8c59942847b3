// Package events carries the transient progress signals of one ingestion run.
// A run's event stream is strictly ordered and ends with exactly one terminal
// event (complete or error); nothing may follow the terminal event.
package events

import (
	"log"
	"sync"

	"go-jobharvest/internal/models"
)

type Type string

const (
	TypeStep     Type = "step"
	TypeData     Type = "data"
	TypeError    Type = "error"
	TypeComplete Type = "complete"
)

// Event is one ScraperEvent frame. Step is set for step events, Listing for
// data events, Message for everything human-readable.
type Event struct {
	Type    Type               `json:"type"`
	Step    int                `json:"step,omitempty"`
	Message string             `json:"message,omitempty"`
	Listing *models.JobListing `json:"listing,omitempty"`
}

// Reporter is the sink the orchestrator emits lifecycle events into.
type Reporter interface {
	Step(ordinal int, message string)
	Data(listing models.JobListing)
	Error(message string)
	Complete(message string)
}

// StreamReporter feeds a bounded channel consumed by one live caller (the SSE
// handler). After a terminal event the channel is closed and any further emit
// is dropped, which keeps the no-events-after-terminal guarantee even if a
// buggy producer keeps going.
type StreamReporter struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// NewStreamReporter sizes the buffer so a slow consumer does not block the
// scrape mid-flight for a typical run.
func NewStreamReporter(buffer int) *StreamReporter {
	if buffer <= 0 {
		buffer = 32
	}
	return &StreamReporter{ch: make(chan Event, buffer)}
}

// Events is the consumer side. It is closed after the terminal event.
func (r *StreamReporter) Events() <-chan Event {
	return r.ch
}

func (r *StreamReporter) Step(ordinal int, message string) {
	r.emit(Event{Type: TypeStep, Step: ordinal, Message: message}, false)
}

func (r *StreamReporter) Data(listing models.JobListing) {
	l := listing
	r.emit(Event{Type: TypeData, Listing: &l}, false)
}

func (r *StreamReporter) Error(message string) {
	r.emit(Event{Type: TypeError, Message: message}, true)
}

func (r *StreamReporter) Complete(message string) {
	r.emit(Event{Type: TypeComplete, Message: message}, true)
}

func (r *StreamReporter) emit(ev Event, terminal bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.ch <- ev
	if terminal {
		r.closed = true
		close(r.ch)
	}
}

// LogReporter is the scheduled-mode sink: events go to the process log and
// nowhere else.
type LogReporter struct{}

func (LogReporter) Step(ordinal int, message string) {
	log.Printf("[run] step %d: %s", ordinal, message)
}

func (LogReporter) Data(listing models.JobListing) {
	log.Printf("[run] listing: %s - %s", listing.Title, listing.Link)
}

func (LogReporter) Error(message string) {
	log.Printf("[run] error: %s", message)
}

func (LogReporter) Complete(message string) {
	log.Printf("[run] complete: %s", message)
}
