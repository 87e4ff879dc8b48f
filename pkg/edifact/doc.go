// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package edifact parses and serializes UN/EDIFACT flat-text messages.

The package models the ORDERS-shaped subset of UN/EDIFACT that trading
partners exchange for purchase orders: an optional UNA service string
advice, an interchange header (UNB), a message header (UNH) and a body of
segments grouped into order lines.

# Delimiters

Six service characters control the syntax. The defaults are

	component ':'  data '+'  decimal '.'  escape '?'  reserved '*'  segment '\''

and a message may override them with a leading UNA line:

	UNA|^.?@~
	BGM^220^123456^9~

# Parsing

	order, err := edifact.ParseDocument(text)
	if err != nil {
	    // errors.Is(err, edifact.ErrIncompleteSegment) etc.
	}
	bgm, ok := order.Segment("BGM")
	for _, line := range order.OrderLines() {
	    qty, _ := line.Quantity.Component(0, 1)
	}

Parsing is strict: the first malformed line aborts the whole document and
no partial result is returned.

# Building

	order := edifact.NewOrderBuilder().
	    WithInterchangeHeader("SENDER", "RECEIVER", "20240119", "REF123").
	    WithMessageHeader("1", "ORDERS").
	    WithBGM("220", "123456", "9").
	    AddOrderLine("1", "ITEM123", "5", "10.00").
	    Build()
	fmt.Print(order.Text())

Build returns an independent copy; the builder stays usable afterwards.

# Round trips

Serializing a parsed segment reproduces the input for well-formed text,
with two known exceptions. The escape character is not escaped on output,
so component text containing it does not survive a parse after
serialization. An element holding a single empty component and an
element holding no components both serialize to adjacent data
separators; which one is produced on parsing depends on position.
*/
package edifact
