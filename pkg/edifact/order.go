// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package edifact

import "strings"

// Service segment tags.
const (
	TagInterchangeHeader = "UNB"
	TagMessageHeader     = "UNH"
)

// Order is a parsed or built ORDERS message: optional interchange and
// message headers plus the ordered body segments. An Order is not safe
// for concurrent mutation.
type Order struct {
	delimiters        Delimiters
	interchangeHeader *Segment
	messageHeader     *Segment
	body              []Segment
}

// NewOrder creates an empty order using the default delimiters.
func NewOrder() *Order {
	return NewOrderWithDelimiters(DefaultDelimiters())
}

// NewOrderWithDelimiters creates an empty order that serializes with d.
func NewOrderWithDelimiters(d Delimiters) *Order {
	return &Order{
		delimiters: d,
		body:       make([]Segment, 0),
	}
}

// Delimiters returns the delimiters the order was parsed with.
func (o *Order) Delimiters() Delimiters {
	return o.delimiters
}

// InterchangeHeader returns the UNB segment, if any.
func (o *Order) InterchangeHeader() (Segment, bool) {
	if o.interchangeHeader == nil {
		return Segment{}, false
	}
	return *o.interchangeHeader, true
}

// SetInterchangeHeader replaces the interchange header slot.
func (o *Order) SetInterchangeHeader(seg Segment) {
	o.interchangeHeader = &seg
}

// MessageHeader returns the UNH segment, if any.
func (o *Order) MessageHeader() (Segment, bool) {
	if o.messageHeader == nil {
		return Segment{}, false
	}
	return *o.messageHeader, true
}

// SetMessageHeader replaces the message header slot.
func (o *Order) SetMessageHeader(seg Segment) {
	o.messageHeader = &seg
}

// Len returns the number of body segments.
func (o *Order) Len() int {
	return len(o.body)
}

// Body returns the body segments in document order.
func (o *Order) Body() []Segment {
	return append([]Segment{}, o.body...)
}

// Segment returns the first body segment with the given tag.
func (o *Order) Segment(tag string) (Segment, bool) {
	for _, seg := range o.body {
		if seg.tag == tag {
			return seg, true
		}
	}
	return Segment{}, false
}

// Segments returns every body segment with the given tag, in order.
func (o *Order) Segments(tag string) []Segment {
	matches := make([]Segment, 0)
	for _, seg := range o.body {
		if seg.tag == tag {
			matches = append(matches, seg)
		}
	}
	return matches
}

// AddSegment appends a new body segment and returns it. The segment's
// position is the body length before the append. No validation is done.
func (o *Order) AddSegment(tag string, elements [][]string) Segment {
	seg := NewSegment(tag, elements, len(o.body))
	o.body = append(o.body, seg)
	return seg
}

// Sender returns the interchange sender identification (UNB element 1).
func (o *Order) Sender() string {
	return o.headerComponent(o.interchangeHeader, 1)
}

// Recipient returns the interchange recipient identification (UNB element 2).
func (o *Order) Recipient() string {
	return o.headerComponent(o.interchangeHeader, 2)
}

// ControlReference returns the interchange control reference (UNB element 4).
func (o *Order) ControlReference() string {
	return o.headerComponent(o.interchangeHeader, 4)
}

// MessageReference returns the message reference number (UNH element 0).
func (o *Order) MessageReference() string {
	return o.headerComponent(o.messageHeader, 0)
}

// MessageType returns the message type identifier (UNH element 1).
func (o *Order) MessageType() string {
	return o.headerComponent(o.messageHeader, 1)
}

func (o *Order) headerComponent(seg *Segment, element int) string {
	if seg == nil {
		return ""
	}
	return seg.ComponentOr(element, 0, "")
}

// Text serializes the order, one segment per line. A UNA line is written
// only when the delimiters differ from the defaults.
func (o *Order) Text() string {
	var b strings.Builder

	if !o.delimiters.IsDefault() {
		b.WriteString(o.delimiters.UNA())
		b.WriteByte('\n')
	}
	if o.interchangeHeader != nil {
		b.WriteString(o.interchangeHeader.Text(o.delimiters))
		b.WriteByte('\n')
	}
	if o.messageHeader != nil {
		b.WriteString(o.messageHeader.Text(o.delimiters))
		b.WriteByte('\n')
	}
	for _, seg := range o.body {
		b.WriteString(seg.Text(o.delimiters))
		b.WriteByte('\n')
	}

	return b.String()
}

// Clone returns a deep copy sharing no state with o.
func (o *Order) Clone() *Order {
	c := &Order{
		delimiters: o.delimiters,
		body:       make([]Segment, len(o.body)),
	}
	for i, seg := range o.body {
		c.body[i] = NewSegment(seg.tag, seg.elements, seg.position)
	}
	if o.interchangeHeader != nil {
		h := NewSegment(o.interchangeHeader.tag, o.interchangeHeader.elements, o.interchangeHeader.position)
		c.interchangeHeader = &h
	}
	if o.messageHeader != nil {
		h := NewSegment(o.messageHeader.tag, o.messageHeader.elements, o.messageHeader.position)
		c.messageHeader = &h
	}
	return c
}
