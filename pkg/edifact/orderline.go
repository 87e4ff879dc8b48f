// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package edifact

// OrderLine groups a LIN segment with the descriptive segments that
// follow it. Each slot holds at most one segment; a repeated tag within
// the same group keeps the last occurrence.
type OrderLine struct {
	Line        Segment
	Description *Segment // IMD
	Quantity    *Segment // QTY
	Amount      *Segment // MOA
	Price       *Segment // PRI
	Reference   *Segment // RFF
}

// NewOrderLine starts a group for a LIN segment.
func NewOrderLine(line Segment) OrderLine {
	return OrderLine{Line: line}
}

// Add stores seg in the slot for its tag (IMD, QTY, MOA, PRI or RFF). It
// reports false for segments that do not belong to an order line.
func (l *OrderLine) Add(seg Segment) bool {
	switch roleOf(seg.tag) {
	case roleDescription:
		l.Description = &seg
	case roleQuantity:
		l.Quantity = &seg
	case roleAmount:
		l.Amount = &seg
	case rolePrice:
		l.Price = &seg
	case roleReference:
		l.Reference = &seg
	default:
		return false
	}
	return true
}

// OrderLines groups the body into order lines. Every LIN opens a new
// group; segments before the first LIN and tags with no slot are
// ignored.
func (o *Order) OrderLines() []OrderLine {
	lines := make([]OrderLine, 0)
	var current *OrderLine

	for _, seg := range o.body {
		if roleOf(seg.tag) == roleLine {
			if current != nil {
				lines = append(lines, *current)
			}
			line := NewOrderLine(seg)
			current = &line
			continue
		}
		if current != nil {
			current.Add(seg)
		}
	}

	if current != nil {
		lines = append(lines, *current)
	}
	return lines
}
