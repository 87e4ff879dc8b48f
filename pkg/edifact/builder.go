// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package edifact

// Fixed values written by OrderBuilder.
const (
	SyntaxIdentifier = "UNOA"
	SyntaxVersion    = "4"
	MessageVersion   = "D"
	MessageRelease   = "01B"
	ControlAgency    = "UN"
	MessageTypeOrder = "ORDERS"
)

// OrderBuilder assembles an Order from structured values. Each step
// mutates the builder and returns it for chaining.
type OrderBuilder struct {
	order *Order
}

// NewOrderBuilder creates a builder around an empty order with default
// delimiters.
func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{order: NewOrder()}
}

// WithInterchangeHeader sets the UNB segment.
func (b *OrderBuilder) WithInterchangeHeader(sender, recipient, date, controlRef string) *OrderBuilder {
	b.order.SetInterchangeHeader(NewSegment(TagInterchangeHeader, [][]string{
		{SyntaxIdentifier, SyntaxVersion},
		{sender},
		{recipient},
		{date},
		{controlRef},
		{MessageTypeOrder},
	}, 0))
	return b
}

// WithMessageHeader sets the UNH segment.
func (b *OrderBuilder) WithMessageHeader(messageRef, messageType string) *OrderBuilder {
	b.order.SetMessageHeader(NewSegment(TagMessageHeader, [][]string{
		{messageRef},
		{messageType, MessageVersion, MessageRelease, ControlAgency},
	}, 1))
	return b
}

// WithBGM appends a beginning-of-message segment.
func (b *OrderBuilder) WithBGM(name, docNumber, function string) *OrderBuilder {
	b.order.AddSegment("BGM", [][]string{{name}, {docNumber}, {function}})
	return b
}

// AddOrderLine appends a LIN, QTY and PRI segment for one line item. The
// item number is qualified as a buyer's part number (BP), the quantity
// as ordered quantity (21) and the price as calculation net (AAA).
// Quantity and price are written as composites, e.g. QTY+21:5'.
func (b *OrderBuilder) AddOrderLine(lineNumber, itemNumber, quantity, price string) *OrderBuilder {
	b.order.AddSegment("LIN", [][]string{{lineNumber}, {}, {itemNumber, "BP"}})
	b.order.AddSegment("QTY", [][]string{{"21", quantity}})
	b.order.AddSegment("PRI", [][]string{{"AAA", price}})
	return b
}

// Build returns a copy of the order assembled so far. Later builder
// steps do not affect it.
func (b *OrderBuilder) Build() *Order {
	return b.order.Clone()
}
