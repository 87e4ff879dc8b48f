// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// ContentTypeGzip is the media type of a compressed interchange.
const ContentTypeGzip = "application/gzip"

// gzipMagic are the first two bytes of every gzip member.
var gzipMagic = []byte{0x1f, 0x8b}

// Codec compresses and inflates interchange payloads.
type Codec struct {
	level int
}

// NewCodec creates a codec using the default compression level.
func NewCodec() *Codec {
	return &Codec{level: gzip.DefaultCompression}
}

// NewCodecWithLevel creates a codec with a gzip level from
// gzip.HuffmanOnly to gzip.BestCompression.
func NewCodecWithLevel(level int) *Codec {
	return &Codec{level: level}
}

// Compress gzips data.
func (c *Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates gzip data.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip payload: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to inflate payload: %w", err)
	}
	return out, nil
}

// Unwrap inflates data when it is gzip and returns it unchanged otherwise.
func (c *Codec) Unwrap(data []byte) ([]byte, error) {
	if !IsGzip(data) {
		return data, nil
	}
	return c.Decompress(data)
}

// IsGzip reports whether data starts with the gzip magic bytes.
func IsGzip(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}
