// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport delivers EDIFACT interchanges to an intake endpoint over
HTTPS.

# TLS Configuration

The package recommends TLS 1.3 with fallback to TLS 1.2:

	config := transport.DefaultHTTPSConfig()
	// MinTLSVersion: TLS 1.2
	// MaxTLSVersion: TLS 1.3

For TLS 1.2, the following cipher suites are recommended:
  - TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384
  - TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256
  - TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384
  - TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256

# Client Usage

	client := transport.NewHTTPSClient(&transport.HTTPSConfig{
	    MinTLSVersion: transport.TLS12,
	    Certificates:  []tls.Certificate{clientCert},
	    RootCAs:       certPool,
	})

	receipt, err := client.SendOrder(ctx, "https://partner.example.com/edifact/interchanges", order)

Set HTTPSConfig.Compress to gzip the body; the receiving side detects
compressed payloads by their magic bytes.

# Content Types

	application/EDIFACT - plain interchange text (RFC 1767)
	application/xml     - edixml rendering or XHE envelope
	application/gzip    - any of the above, compressed
*/
package transport
