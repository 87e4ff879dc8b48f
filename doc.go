// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package goedifact implements parsing and serialization of UN/EDIFACT
interchanges, with a focus on ORDERS purchase order messages.

# Overview

go-edifact reads the segment-per-line interchange format exchanged between
trading partners, honours UNA service string advice and release character
escaping, and writes interchanges back out with the same delimiters. Parsed
messages are exposed as an order: interchange header (UNB), message header
(UNH) and the remaining body segments in document order, with helpers that
group the body into order lines.

# Package Structure

	github.com/sirosfoundation/go-edifact/pkg/edifact     - Delimiters, segments, parser, orders and builder
	github.com/sirosfoundation/go-edifact/pkg/edixml      - XML rendering of an order
	github.com/sirosfoundation/go-edifact/pkg/xhe         - Exchange Header Envelope wrapping
	github.com/sirosfoundation/go-edifact/pkg/compression - GZIP payload compression
	github.com/sirosfoundation/go-edifact/pkg/reliability - Duplicate interchange detection

The internal packages assemble these into an intake service: YAML
configuration, an HTTP server, and memory or MongoDB storage.

# Quick Start

Parsing a document:

	order, err := edifact.ParseDocument(text)
	if err != nil {
		var syntaxErr *edifact.SyntaxError
		if errors.As(err, &syntaxErr) {
			log.Printf("line %d: %v", syntaxErr.Line, syntaxErr.Err)
		}
		return err
	}
	for _, line := range order.OrderLines() {
		fmt.Println(line.Line.ComponentOr(2, 0, ""))
	}

Building one:

	order := edifact.NewOrderBuilder().
		WithInterchangeHeader("SENDER", "RECEIVER", "20240301", "REF123").
		WithMessageHeader("MSG001", edifact.MessageTypeOrder).
		WithBGM("220", "PO-1", "9").
		AddOrderLine("1", "ITEM-A", "2", "9.99").
		Build()
	fmt.Print(order.Text())

# Syntax

The default delimiters are those of UNA:+.?*' (component ':', data '+',
decimal '.', release '?', reserved '*', terminator '\''). A UNA line at the
start of a document replaces them for that document. Reserved characters
inside values are preceded by the release character on output.

# License

BSD-2-Clause License
*/
package goedifact
