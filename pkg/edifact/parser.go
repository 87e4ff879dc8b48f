// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package edifact

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Parser turns EDIFACT text into segments and orders. The zero value is
// not usable; create one with NewParser.
type Parser struct {
	delimiters Delimiters
	logger     *slog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger sets the logger used for debug records.
func WithLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithDelimiters sets the delimiters used when a document carries no UNA
// line.
func WithDelimiters(d Delimiters) ParserOption {
	return func(p *Parser) {
		p.delimiters = d
	}
}

// NewParser creates a parser using the default delimiters.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		delimiters: DefaultDelimiters(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Delimiters returns the delimiters the parser starts from.
func (p *Parser) Delimiters() Delimiters {
	return p.delimiters
}

// SetDelimiters replaces the parser's delimiters with those of a UNA line.
func (p *Parser) SetDelimiters(una string) error {
	d, err := ParseUNA(una)
	if err != nil {
		return err
	}
	p.delimiters = d
	return nil
}

// ParseSegment tokenizes one segment with the parser's delimiters.
func (p *Parser) ParseSegment(text string, position int) (Segment, error) {
	seg, err := tokenize(text, p.delimiters)
	if err != nil {
		return Segment{}, &SyntaxError{Text: text, Err: err}
	}
	seg.position = position
	return seg, nil
}

// ParseSegment tokenizes the text of exactly one segment. The text must
// end with the segment terminator.
func ParseSegment(text string, d Delimiters) (Segment, error) {
	seg, err := tokenize(text, d)
	if err != nil {
		return Segment{}, &SyntaxError{Text: text, Err: err}
	}
	return seg, nil
}

// ParseDocument parses a complete message with a default Parser.
func ParseDocument(text string) (*Order, error) {
	return NewParser().ParseDocument(text)
}

// ParseDocument parses a complete message, one segment per line. A
// leading UNA line overrides the parser's delimiters for this document
// only. Blank lines are skipped. UNB and UNH segments go to the header
// slots, where a later occurrence replaces an earlier one; all other
// segments are appended to the body in order.
func (p *Parser) ParseDocument(text string) (*Order, error) {
	lines := strings.Split(text, "\n")
	d := p.delimiters
	first := 0

	if len(lines) > 0 && strings.HasPrefix(trimCR(lines[0]), UNATag) {
		una := trimCR(lines[0])
		resolved, err := ParseUNA(una)
		if err != nil {
			return nil, &SyntaxError{Line: 1, Text: una, Err: err}
		}
		d = resolved
		first = 1
		p.logger.Debug("resolved delimiters from UNA", slog.String("una", d.UNA()))
	}

	order := NewOrderWithDelimiters(d)
	position := 0

	for i := first; i < len(lines); i++ {
		line := trimCR(lines[i])
		if strings.TrimSpace(line) == "" {
			continue
		}

		seg, err := tokenize(line, d)
		if err != nil {
			return nil, &SyntaxError{Line: i + 1, Text: line, Err: err}
		}
		seg.position = position
		position++

		switch roleOf(seg.tag) {
		case roleInterchangeHeader:
			if order.interchangeHeader != nil {
				p.logger.Debug("replacing interchange header", slog.Int("line", i+1))
			}
			order.interchangeHeader = &seg
		case roleMessageHeader:
			if order.messageHeader != nil {
				p.logger.Debug("replacing message header", slog.Int("line", i+1))
			}
			order.messageHeader = &seg
		default:
			order.body = append(order.body, seg)
		}
	}

	p.logger.LogAttrs(context.Background(), slog.LevelDebug, "parsed document",
		slog.Int("segments", position),
		slog.Int("body", len(order.body)),
	)

	return order, nil
}

func trimCR(line string) string {
	return strings.TrimSuffix(line, "\r")
}

// tokenize is the segment state machine. It returns bare sentinel errors;
// callers attach location.
func tokenize(text string, d Delimiters) (Segment, error) {
	runes := []rune(text)
	i := 0

	var tag strings.Builder
	for i < len(runes) {
		r := runes[i]
		if r == d.Data {
			i++
			break
		}
		if r == d.Segment {
			return Segment{tag: tag.String(), elements: [][]string{}}, nil
		}
		tag.WriteRune(r)
		i++
	}

	var (
		elements  = [][]string{}
		element   = []string{}
		component strings.Builder
		escaped   bool
		afterData bool // previous rune was an unescaped data delimiter
	)

	for ; i < len(runes); i++ {
		r := runes[i]

		switch {
		case escaped:
			component.WriteRune(r)
			escaped = false
			afterData = false

		case r == d.Escape:
			escaped = true

		case r == d.Component:
			element = append(element, component.String())
			component.Reset()
			afterData = false

		case r == d.Data:
			if afterData {
				elements = append(elements, []string{})
			} else {
				element = append(element, component.String())
				elements = append(elements, element)
			}
			element = []string{}
			component.Reset()
			afterData = true

		case r == d.Segment:
			if len(element) > 0 || component.Len() > 0 {
				element = append(element, component.String())
				elements = append(elements, element)
			}
			return Segment{tag: tag.String(), elements: elements}, nil

		default:
			component.WriteRune(r)
			afterData = false
		}
	}

	if escaped {
		return Segment{}, ErrInvalidEscape
	}
	return Segment{}, ErrIncompleteSegment
}
