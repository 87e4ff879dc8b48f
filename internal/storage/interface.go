// Package storage provides data storage interfaces and implementations
// for received EDIFACT interchanges.
//
// # Interface Design
//
// [InterchangeStore] persists one [Interchange] per received document: the
// routing metadata pulled from the UNB and UNH headers, the canonical
// EDIFACT text and a few counters used for listing.
//
// # Implementations
//
// The memory sub-package keeps records in process and is used by tests and
// development setups. The mongodb sub-package provides a MongoDB
// implementation.
//
// # Concurrency
//
// All store implementations must be safe for concurrent use from multiple
// goroutines.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested interchange does not exist
var ErrNotFound = errors.New("interchange not found")

// InterchangeStore manages received interchanges
type InterchangeStore interface {
	// SaveInterchange stores a new interchange. An empty ID is assigned.
	SaveInterchange(ctx context.Context, ic *Interchange) error

	// GetInterchange retrieves an interchange by ID
	GetInterchange(ctx context.Context, id string) (*Interchange, error)

	// FindByControlRef retrieves the interchange a sender submitted under
	// the given interchange control reference
	FindByControlRef(ctx context.Context, sender, controlRef string) (*Interchange, error)

	// ListInterchanges returns interchanges, newest first
	ListInterchanges(ctx context.Context, filter *InterchangeFilter) ([]*Interchange, error)

	// Close releases storage resources
	Close(ctx context.Context) error

	// Ping checks database connectivity
	Ping(ctx context.Context) error
}

// Interchange is a stored EDIFACT document
type Interchange struct {
	ID        string `bson:"_id" json:"id"`
	Sender    string `bson:"sender" json:"sender"`
	Recipient string `bson:"recipient" json:"recipient"`

	// ControlRef is the interchange control reference (UNB element 4)
	ControlRef string `bson:"control_ref" json:"controlRef"`

	// MessageRef and MessageType come from the UNH segment
	MessageRef  string `bson:"message_ref,omitempty" json:"messageRef,omitempty"`
	MessageType string `bson:"message_type,omitempty" json:"messageType,omitempty"`

	// Content is the document serialized with its own delimiters
	Content string `bson:"content" json:"content"`

	Segments int `bson:"segments" json:"segments"`
	Lines    int `bson:"lines" json:"lines"`

	ReceivedAt time.Time `bson:"received_at" json:"receivedAt"`
}

// InterchangeFilter narrows ListInterchanges
type InterchangeFilter struct {
	Sender      string
	Recipient   string
	MessageType string
	Since       *time.Time
	Limit       int
	Offset      int
}

// Matches reports whether ic satisfies every set field of the filter.
// A nil filter matches everything.
func (f *InterchangeFilter) Matches(ic *Interchange) bool {
	if f == nil {
		return true
	}
	if f.Sender != "" && ic.Sender != f.Sender {
		return false
	}
	if f.Recipient != "" && ic.Recipient != f.Recipient {
		return false
	}
	if f.MessageType != "" && ic.MessageType != f.MessageType {
		return false
	}
	if f.Since != nil && ic.ReceivedAt.Before(*f.Since) {
		return false
	}
	return true
}
