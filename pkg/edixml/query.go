// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package edixml

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/sirosfoundation/go-edifact/pkg/edifact"
)

// Query evaluates an XPath expression against the XML form of an order
// and returns the selected segments in document order. The expression
// must select Segment elements, for example
//
//	//Body/Segment[@tag='LIN']
//	//Segment[@tag='QTY'][Element[1]/Component[1]='21']
func Query(data []byte, expr string) ([]edifact.Segment, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	nodes := xmlquery.QuerySelectorAll(root, compiled)
	segments := make([]edifact.Segment, 0, len(nodes))
	for _, n := range nodes {
		seg, err := nodeSegment(n)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// QueryOrder renders o and runs Query over the result.
func QueryOrder(o *edifact.Order, expr string) ([]edifact.Segment, error) {
	data, err := Marshal(o)
	if err != nil {
		return nil, err
	}
	return Query(data, expr)
}

func nodeSegment(n *xmlquery.Node) (edifact.Segment, error) {
	if n.Type != xmlquery.ElementNode || n.Data != ElemSegment {
		return edifact.Segment{}, fmt.Errorf("xpath selected <%s>, not %s", n.Data, ElemSegment)
	}

	tag := n.SelectAttr(AttrTag)
	if tag == "" {
		return edifact.Segment{}, fmt.Errorf("%s without %s attribute", ElemSegment, AttrTag)
	}

	position := 0
	if v := n.SelectAttr(AttrPosition); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return edifact.Segment{}, fmt.Errorf("segment %s: invalid position %q: %w", tag, v, err)
		}
		position = p
	}

	elements := make([][]string, 0)
	for e := n.FirstChild; e != nil; e = e.NextSibling {
		if e.Type != xmlquery.ElementNode || e.Data != ElemElement {
			continue
		}
		components := make([]string, 0)
		for c := e.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xmlquery.ElementNode && c.Data == ElemComponent {
				components = append(components, c.InnerText())
			}
		}
		elements = append(elements, components)
	}

	return edifact.NewSegment(tag, elements, position), nil
}
