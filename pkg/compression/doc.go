// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package compression gzips EDIFACT interchange payloads.

Interchanges travel compressed over AS4 and similar transports. Receivers
often cannot tell from the transport metadata whether a payload was
compressed, so [IsGzip] sniffs the RFC 1952 magic bytes and [Codec.Unwrap]
only inflates payloads that carry them:

	codec := compression.NewCodec()
	packed, err := codec.Compress([]byte(order.Text()))

	text, err := codec.Unwrap(received) // plain text passes through

# References

  - GZIP RFC 1952: https://datatracker.ietf.org/doc/html/rfc1952
*/
package compression
