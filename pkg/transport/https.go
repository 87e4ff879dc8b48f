package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirosfoundation/go-edifact/pkg/compression"
	"github.com/sirosfoundation/go-edifact/pkg/edifact"
	"github.com/sirosfoundation/go-edifact/pkg/xhe"
)

// TLS version constants
const (
	TLS12 = tls.VersionTLS12
	TLS13 = tls.VersionTLS13
)

// UserAgent is sent with every request
const UserAgent = "go-edifact/1.0"

// Recommended TLS 1.2 cipher suites
var RecommendedTLS12CipherSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
}

// HTTPSConfig contains HTTPS client configuration
type HTTPSConfig struct {
	MinTLSVersion   uint16
	MaxTLSVersion   uint16
	CipherSuites    []uint16
	Certificates    []tls.Certificate
	RootCAs         *x509.CertPool
	Timeout         time.Duration
	IdleConnTimeout time.Duration

	// Compress gzips request bodies
	Compress bool
}

// DefaultHTTPSConfig returns a default HTTPS configuration
func DefaultHTTPSConfig() *HTTPSConfig {
	return &HTTPSConfig{
		MinTLSVersion:   TLS12,
		MaxTLSVersion:   TLS13,
		CipherSuites:    RecommendedTLS12CipherSuites,
		Timeout:         30 * time.Second,
		IdleConnTimeout: 90 * time.Second,
	}
}

// StatusError is returned when the endpoint answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// Receipt is the endpoint's acknowledgement of a delivered interchange
type Receipt struct {
	ID          string    `json:"id"`
	Sender      string    `json:"sender"`
	Recipient   string    `json:"recipient"`
	ControlRef  string    `json:"controlRef"`
	MessageType string    `json:"messageType,omitempty"`
	Segments    int       `json:"segments"`
	Lines       int       `json:"lines"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

// HTTPSClient delivers interchanges over HTTPS
type HTTPSClient struct {
	client *http.Client
	config *HTTPSConfig
	codec  *compression.Codec
}

// NewHTTPSClient creates a new HTTPS client
func NewHTTPSClient(config *HTTPSConfig) *HTTPSClient {
	if config == nil {
		config = DefaultHTTPSConfig()
	}

	tlsConfig := &tls.Config{
		MinVersion:   config.MinTLSVersion,
		MaxVersion:   config.MaxTLSVersion,
		CipherSuites: config.CipherSuites,
		Certificates: config.Certificates,
		RootCAs:      config.RootCAs,
	}

	transport := &http.Transport{
		TLSClientConfig:     tlsConfig,
		IdleConnTimeout:     config.IdleConnTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}

	return &HTTPSClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		config: config,
		codec:  compression.NewCodec(),
	}
}

// Send posts a payload to the endpoint and returns the response body.
// Any 2xx status is success.
func (c *HTTPSClient) Send(ctx context.Context, endpoint string, payload []byte, contentType string) ([]byte, error) {
	if c.config.Compress {
		packed, err := c.codec.Compress(payload)
		if err != nil {
			return nil, err
		}
		payload = packed
		contentType = compression.ContentTypeGzip
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return responseBody, nil
}

// SendOrder delivers an order as EDIFACT text and decodes the receipt.
func (c *HTTPSClient) SendOrder(ctx context.Context, endpoint string, order *edifact.Order) (*Receipt, error) {
	return c.sendForReceipt(ctx, endpoint, []byte(order.Text()), xhe.ContentTypeEDIFACT)
}

// SendEnvelope delivers an order wrapped in an XHE envelope.
func (c *HTTPSClient) SendEnvelope(ctx context.Context, endpoint string, order *edifact.Order) (*Receipt, error) {
	envelope, err := xhe.FromOrder(order, "")
	if err != nil {
		return nil, err
	}
	data, err := envelope.Marshal()
	if err != nil {
		return nil, err
	}
	return c.sendForReceipt(ctx, endpoint, data, "application/xml")
}

func (c *HTTPSClient) sendForReceipt(ctx context.Context, endpoint string, payload []byte, contentType string) (*Receipt, error) {
	body, err := c.Send(ctx, endpoint, payload, contentType)
	if err != nil {
		return nil, err
	}

	var receipt Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("failed to decode receipt: %w", err)
	}
	return &receipt, nil
}
