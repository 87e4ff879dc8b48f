// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package edixml

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/sirosfoundation/go-edifact/pkg/edifact"
)

// Element and attribute names of the XML form.
const (
	ElemRoot              = "EDIFACT"
	ElemInterchangeHeader = "InterchangeHeader"
	ElemMessageHeader     = "MessageHeader"
	ElemBody              = "Body"
	ElemSegment           = "Segment"
	ElemElement           = "Element"
	ElemComponent         = "Component"

	AttrUNA      = "una"
	AttrTag      = "tag"
	AttrPosition = "position"
)

// Marshal renders an order as an indented XML document.
func Marshal(o *edifact.Order) ([]byte, error) {
	if o == nil {
		return nil, fmt.Errorf("order is nil")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(ElemRoot)
	root.CreateAttr(AttrUNA, o.Delimiters().UNA())

	if unb, ok := o.InterchangeHeader(); ok {
		writeSegment(root.CreateElement(ElemInterchangeHeader), unb)
	}
	if unh, ok := o.MessageHeader(); ok {
		writeSegment(root.CreateElement(ElemMessageHeader), unh)
	}

	body := root.CreateElement(ElemBody)
	for _, seg := range o.Body() {
		writeSegment(body, seg)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to write XML: %w", err)
	}
	return out, nil
}

func writeSegment(parent *etree.Element, seg edifact.Segment) {
	el := parent.CreateElement(ElemSegment)
	el.CreateAttr(AttrTag, seg.Tag())
	el.CreateAttr(AttrPosition, strconv.Itoa(seg.Position()))

	for _, components := range seg.Elements() {
		e := el.CreateElement(ElemElement)
		for _, c := range components {
			e.CreateElement(ElemComponent).SetText(c)
		}
	}
}

// Unmarshal reads an order from its XML form. Unknown elements are
// ignored. Header positions come from the position attribute; body
// segments are numbered in document order, as Order.AddSegment does.
func Unmarshal(data []byte) (*edifact.Order, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != ElemRoot {
		return nil, fmt.Errorf("missing %s root element", ElemRoot)
	}

	d := edifact.DefaultDelimiters()
	if una := root.SelectAttrValue(AttrUNA, ""); una != "" {
		resolved, err := edifact.ParseUNA(una)
		if err != nil {
			return nil, fmt.Errorf("invalid %s attribute: %w", AttrUNA, err)
		}
		d = resolved
	}
	order := edifact.NewOrderWithDelimiters(d)

	if h := root.SelectElement(ElemInterchangeHeader); h != nil {
		seg, err := readHeader(h)
		if err != nil {
			return nil, err
		}
		order.SetInterchangeHeader(seg)
	}
	if h := root.SelectElement(ElemMessageHeader); h != nil {
		seg, err := readHeader(h)
		if err != nil {
			return nil, err
		}
		order.SetMessageHeader(seg)
	}

	if body := root.SelectElement(ElemBody); body != nil {
		for _, el := range body.SelectElements(ElemSegment) {
			seg, err := readSegment(el)
			if err != nil {
				return nil, err
			}
			order.AddSegment(seg.Tag(), seg.Elements())
		}
	}

	return order, nil
}

func readHeader(h *etree.Element) (edifact.Segment, error) {
	el := h.SelectElement(ElemSegment)
	if el == nil {
		return edifact.Segment{}, fmt.Errorf("%s has no %s", h.Tag, ElemSegment)
	}
	return readSegment(el)
}

func readSegment(el *etree.Element) (edifact.Segment, error) {
	tag := el.SelectAttrValue(AttrTag, "")
	if tag == "" {
		return edifact.Segment{}, fmt.Errorf("%s without %s attribute", ElemSegment, AttrTag)
	}

	position := 0
	if v := el.SelectAttrValue(AttrPosition, ""); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return edifact.Segment{}, fmt.Errorf("segment %s: invalid position %q: %w", tag, v, err)
		}
		position = p
	}

	elements := make([][]string, 0)
	for _, e := range el.SelectElements(ElemElement) {
		components := make([]string, 0)
		for _, c := range e.SelectElements(ElemComponent) {
			components = append(components, c.Text())
		}
		elements = append(elements, components)
	}

	return edifact.NewSegment(tag, elements, position), nil
}
