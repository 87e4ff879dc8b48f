// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package edifact

import (
	"errors"
	"fmt"
)

// Parse failures. Callers match them with errors.Is.
var (
	// ErrMalformedUNA indicates a UNA line shorter than nine characters.
	ErrMalformedUNA = errors.New("malformed UNA header")

	// ErrIncompleteSegment indicates input ended before a segment terminator.
	ErrIncompleteSegment = errors.New("incomplete segment")

	// ErrInvalidEscape indicates an escape character with nothing after it.
	ErrInvalidEscape = errors.New("invalid escape")
)

// SyntaxError records where a parse failed.
type SyntaxError struct {
	Line int    // 1-based physical line, 0 when a lone segment was parsed
	Text string // raw text of the offending line
	Err  error  // one of the sentinel errors
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("edifact: line %d: %v: %q", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("edifact: %v: %q", e.Err, e.Text)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
