// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package edifact

import (
	"fmt"
	"strings"
)

// UNATag is the tag of the service string advice line.
const UNATag = "UNA"

// unaLength is the number of runes in a complete UNA line.
const unaLength = 9

// Delimiters holds the service characters used to parse and serialize a
// message. The characters are not required to be distinct.
type Delimiters struct {
	Component rune
	Data      rune
	Decimal   rune
	Escape    rune
	Segment   rune
	Reserved  rune
}

// DefaultDelimiters returns the syntax characters in effect when no UNA
// line is present.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Component: ':',
		Data:      '+',
		Decimal:   '.',
		Escape:    '?',
		Segment:   '\'',
		Reserved:  '*',
	}
}

// ParseUNA resolves delimiters from a UNA line. Runes 3 to 8 map to
// component, data, decimal, escape, reserved and segment terminator, in
// that order. Anything after the ninth rune is ignored.
func ParseUNA(line string) (Delimiters, error) {
	if !strings.HasPrefix(line, UNATag) {
		return Delimiters{}, fmt.Errorf("%w: missing %s prefix", ErrMalformedUNA, UNATag)
	}

	r := []rune(line)
	if len(r) < unaLength {
		return Delimiters{}, fmt.Errorf("%w: need %d characters, got %d", ErrMalformedUNA, unaLength, len(r))
	}

	return Delimiters{
		Component: r[3],
		Data:      r[4],
		Decimal:   r[5],
		Escape:    r[6],
		Reserved:  r[7],
		Segment:   r[8],
	}, nil
}

// UNA renders the delimiters as a service string advice line, without a
// line break.
func (d Delimiters) UNA() string {
	var b strings.Builder
	b.WriteString(UNATag)
	for _, r := range []rune{d.Component, d.Data, d.Decimal, d.Escape, d.Reserved, d.Segment} {
		b.WriteRune(r)
	}
	return b.String()
}

// IsDefault reports whether d equals DefaultDelimiters.
func (d Delimiters) IsDefault() bool {
	return d == DefaultDelimiters()
}

// needsEscape reports whether r collides with a delimiter that must be
// escaped inside component text. The decimal mark separates nothing and
// is written as is, so amounts such as 9.99 stay readable. The escape
// character is not escaped either.
func (d Delimiters) needsEscape(r rune) bool {
	return r == d.Data ||
		r == d.Component ||
		r == d.Segment ||
		r == d.Reserved
}
