// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package edifact

import (
	"fmt"
	"strings"
)

// Segment is one tagged unit of a message. Its elements are ordered
// lists of components. A Segment is immutable: constructors and
// accessors copy the element data.
type Segment struct {
	tag      string
	elements [][]string
	position int
}

// NewSegment creates a segment. The elements are copied.
func NewSegment(tag string, elements [][]string, position int) Segment {
	return Segment{
		tag:      tag,
		elements: copyElements(elements),
		position: position,
	}
}

// Tag returns the segment tag, for example "BGM".
func (s Segment) Tag() string {
	return s.tag
}

// Position returns the zero-based sequence index assigned when the
// segment was parsed or added.
func (s Segment) Position() int {
	return s.position
}

// Len returns the number of data elements.
func (s Segment) Len() int {
	return len(s.elements)
}

// Elements returns a copy of all data elements.
func (s Segment) Elements() [][]string {
	return copyElements(s.elements)
}

// Element returns the components of the element at index i.
func (s Segment) Element(i int) ([]string, bool) {
	if i < 0 || i >= len(s.elements) {
		return nil, false
	}
	return append([]string{}, s.elements[i]...), true
}

// Component returns component j of element i.
func (s Segment) Component(i, j int) (string, bool) {
	if i < 0 || i >= len(s.elements) {
		return "", false
	}
	el := s.elements[i]
	if j < 0 || j >= len(el) {
		return "", false
	}
	return el[j], true
}

// ComponentOr returns component j of element i, or def when absent.
func (s Segment) ComponentOr(i, j int, def string) string {
	if c, ok := s.Component(i, j); ok {
		return c
	}
	return def
}

// Equal reports whether two segments carry the same tag and elements.
// Positions are not compared.
func (s Segment) Equal(other Segment) bool {
	if s.tag != other.tag || len(s.elements) != len(other.elements) {
		return false
	}
	for i := range s.elements {
		if len(s.elements[i]) != len(other.elements[i]) {
			return false
		}
		for j := range s.elements[i] {
			if s.elements[i][j] != other.elements[i][j] {
				return false
			}
		}
	}
	return true
}

// String returns a debugging representation such as "NAD: [[BY] [123 9]]".
func (s Segment) String() string {
	return fmt.Sprintf("%s: %v", s.tag, s.elements)
}

// Text serializes the segment using d. Delimiter characters inside
// component text are prefixed with the escape character; the escape
// character itself is written as is. The result ends with the segment
// terminator and carries no line break.
func (s Segment) Text(d Delimiters) string {
	var b strings.Builder
	b.WriteString(s.tag)

	for _, el := range s.elements {
		b.WriteRune(d.Data)
		for i, comp := range el {
			if i > 0 {
				b.WriteRune(d.Component)
			}
			for _, r := range comp {
				if d.needsEscape(r) {
					b.WriteRune(d.Escape)
				}
				b.WriteRune(r)
			}
		}
	}

	b.WriteRune(d.Segment)
	return b.String()
}

func copyElements(elements [][]string) [][]string {
	if elements == nil {
		return nil
	}
	out := make([][]string, len(elements))
	for i, el := range elements {
		if el == nil {
			out[i] = []string{}
			continue
		}
		out[i] = append(make([]string, 0, len(el)), el...)
	}
	return out
}
