// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

// Package xhe wraps EDIFACT interchanges in an XML Header Envelope (XHE)
// so they can be routed over eDelivery networks that only carry XML.
//
// The envelope header is derived from the interchange header: the UNB
// control reference becomes the envelope ID and the UNB sender and
// recipient become FromParty and ToParty. The interchange text travels as
// escaped character data in a single payload.
//
// Reference: https://docs.oasis-open.org/bdxr/xhe/v1.0/xhe-v1.0.html
package xhe

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sirosfoundation/go-edifact/pkg/edifact"
)

const (
	// NsXHE is the XHE namespace
	NsXHE = "http://docs.oasis-open.org/bdxr/ns/XHE/1/ExchangeHeaderEnvelope"

	// VersionID is the XHE version written by the builder
	VersionID = "1.0"

	// ContentTypeEDIFACT is the payload content type for EDIFACT interchanges (RFC 1767)
	ContentTypeEDIFACT = "application/EDIFACT"

	// SchemeEDIFACTSyntax is used when the UNB party identifiers carry no scheme
	SchemeEDIFACTSyntax = "urn:un:unece:uncefact:codelist:specification:edifact"
)

// XHE is an XML Header Envelope
type XHE struct {
	XMLName      xml.Name `xml:"XHE"`
	Namespace    string   `xml:"xmlns,attr,omitempty"`
	XHEVersionID string   `xml:"XHEVersionID"`
	Header       Header   `xml:"Header"`
	Payloads     Payloads `xml:"Payloads"`
}

// Header carries routing metadata
type Header struct {
	ID               string  `xml:"ID"`
	UUID             string  `xml:"UUID,omitempty"`
	CreationDateTime string  `xml:"CreationDateTime"`
	FromParty        Party   `xml:"FromParty"`
	ToParty          []Party `xml:"ToParty"`
}

// Created returns the parsed creation time, or the zero time if it is
// missing or malformed.
func (h Header) Created() time.Time {
	t, err := time.Parse(time.RFC3339, h.CreationDateTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Party identifies a sender or receiver
type Party struct {
	PartyID PartyID `xml:"PartyIdentification>ID"`
}

// PartyID is a party identifier qualified by a scheme
type PartyID struct {
	SchemeID string `xml:"schemeID,attr,omitempty"`
	Value    string `xml:",chardata"`
}

// Payloads holds the payload collection
type Payloads struct {
	Payload []Payload `xml:"Payload"`
}

// Payload is one document carried in the envelope
type Payload struct {
	ID              string         `xml:"ID,omitempty"`
	Description     string         `xml:"Description,omitempty"`
	ContentTypeCode string         `xml:"ContentTypeCode,omitempty"`
	PayloadContent  PayloadContent `xml:"PayloadContent"`
}

// PayloadContent is the payload body as raw inner XML
type PayloadContent struct {
	Content []byte `xml:",innerxml"`
}

// Text returns the character data of the payload with XML escaping
// removed. Payloads holding markup are rejected.
func (p *Payload) Text() (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(p.PayloadContent.Content))
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to decode payload %s: %w", p.ID, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			return "", fmt.Errorf("payload %s contains markup, not text", p.ID)
		}
	}
}

// Order parses an EDIFACT payload.
func (p *Payload) Order() (*edifact.Order, error) {
	if p.ContentTypeCode != ContentTypeEDIFACT {
		return nil, fmt.Errorf("payload %s has content type %q, not %s", p.ID, p.ContentTypeCode, ContentTypeEDIFACT)
	}
	text, err := p.Text()
	if err != nil {
		return nil, err
	}
	return edifact.ParseDocument(text)
}

// Builder provides a fluent interface for creating XHE envelopes
type Builder struct {
	xhe *XHE
	err error
}

// NewBuilder creates a new XHE builder
func NewBuilder() *Builder {
	return &Builder{
		xhe: &XHE{
			Namespace:    NsXHE,
			XHEVersionID: VersionID,
			Header: Header{
				ToParty: make([]Party, 0),
			},
			Payloads: Payloads{
				Payload: make([]Payload, 0),
			},
		},
	}
}

// WithID sets the header ID
func (b *Builder) WithID(id string) *Builder {
	b.xhe.Header.ID = id
	return b
}

// WithUUID sets the header UUID
func (b *Builder) WithUUID(id string) *Builder {
	b.xhe.Header.UUID = id
	return b
}

// WithCreationTime sets the creation timestamp
func (b *Builder) WithCreationTime(t time.Time) *Builder {
	b.xhe.Header.CreationDateTime = t.UTC().Format(time.RFC3339)
	return b
}

// WithFromParty sets the sender party
func (b *Builder) WithFromParty(schemeID, partyID string) *Builder {
	b.xhe.Header.FromParty = Party{PartyID: PartyID{SchemeID: schemeID, Value: partyID}}
	return b
}

// WithToParty adds a recipient party
func (b *Builder) WithToParty(schemeID, partyID string) *Builder {
	b.xhe.Header.ToParty = append(b.xhe.Header.ToParty, Party{
		PartyID: PartyID{SchemeID: schemeID, Value: partyID},
	})
	return b
}

// AddPayload adds a payload to the envelope
func (b *Builder) AddPayload(payload Payload) *Builder {
	b.xhe.Payloads.Payload = append(b.xhe.Payloads.Payload, payload)
	return b
}

// AddEDIFACTPayload adds interchange text as escaped character data
func (b *Builder) AddEDIFACTPayload(id, text string) *Builder {
	if b.err != nil {
		return b
	}
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(text)); err != nil {
		b.err = fmt.Errorf("failed to escape payload %s: %w", id, err)
		return b
	}
	return b.AddPayload(Payload{
		ID:              id,
		ContentTypeCode: ContentTypeEDIFACT,
		PayloadContent:  PayloadContent{Content: buf.Bytes()},
	})
}

// Build validates and returns the envelope
func (b *Builder) Build() (*XHE, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.xhe.Header.ID == "" {
		return nil, fmt.Errorf("header ID is required")
	}
	if b.xhe.Header.FromParty.PartyID.Value == "" {
		return nil, fmt.Errorf("FromParty is required")
	}
	if len(b.xhe.Header.ToParty) == 0 {
		return nil, fmt.Errorf("at least one ToParty is required")
	}
	if len(b.xhe.Payloads.Payload) == 0 {
		return nil, fmt.Errorf("at least one payload is required")
	}

	if b.xhe.Header.CreationDateTime == "" {
		b.WithCreationTime(time.Now())
	}

	return b.xhe, nil
}

// FromOrder wraps an order in an envelope. The order must carry an
// interchange header with sender, recipient and control reference.
// scheme qualifies both party identifiers; when empty,
// SchemeEDIFACTSyntax is used.
func FromOrder(o *edifact.Order, scheme string) (*XHE, error) {
	if o == nil {
		return nil, fmt.Errorf("order is nil")
	}
	if _, ok := o.InterchangeHeader(); !ok {
		return nil, fmt.Errorf("order has no %s interchange header", edifact.TagInterchangeHeader)
	}
	if scheme == "" {
		scheme = SchemeEDIFACTSyntax
	}

	ref := o.ControlReference()
	return NewBuilder().
		WithID(ref).
		WithUUID(uuid.NewString()).
		WithFromParty(scheme, o.Sender()).
		WithToParty(scheme, o.Recipient()).
		AddEDIFACTPayload(ref, o.Text()).
		Build()
}

// Marshal serializes the XHE to XML bytes
func (x *XHE) Marshal() ([]byte, error) {
	out, err := xml.MarshalIndent(x, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal XHE: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Parse parses XML bytes into an XHE structure
func Parse(data []byte) (*XHE, error) {
	var x XHE
	if err := xml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("failed to parse XHE: %w", err)
	}
	return &x, nil
}

// FirstPayload returns the first payload or nil
func (x *XHE) FirstPayload() *Payload {
	if len(x.Payloads.Payload) > 0 {
		return &x.Payloads.Payload[0]
	}
	return nil
}

// PayloadByID returns a payload by ID
func (x *XHE) PayloadByID(id string) *Payload {
	for i := range x.Payloads.Payload {
		if x.Payloads.Payload[i].ID == id {
			return &x.Payloads.Payload[i]
		}
	}
	return nil
}
