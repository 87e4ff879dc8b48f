package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirosfoundation/go-edifact/internal/config"
	"github.com/sirosfoundation/go-edifact/internal/intake"
	"github.com/sirosfoundation/go-edifact/internal/server"
	"github.com/sirosfoundation/go-edifact/internal/storage/memory"
	"github.com/sirosfoundation/go-edifact/pkg/compression"
	"github.com/sirosfoundation/go-edifact/pkg/edifact"
)

func testOrder(ref string) *edifact.Order {
	return edifact.NewOrderBuilder().
		WithInterchangeHeader("SENDER", "RECEIVER", "20240301", ref).
		WithMessageHeader("MSG001", edifact.MessageTypeOrder).
		WithBGM("220", "PO-1", "9").
		AddOrderLine("1", "ITEM-A", "2", "9.99").
		Build()
}

// newIntakeServer runs the intake HTTP server behind TLS and returns its
// interchange endpoint and a cert pool trusting it.
func newIntakeServer(t *testing.T) (string, *x509.CertPool) {
	t.Helper()

	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := intake.New(memory.NewStore(), intake.WithLogger(logger))

	ts := httptest.NewTLSServer(server.New(cfg, svc, logger).Handler())
	t.Cleanup(ts.Close)

	pool := x509.NewCertPool()
	pool.AddCert(ts.Certificate())
	return ts.URL + cfg.Server.BasePath + "/interchanges", pool
}

func TestDefaultHTTPSConfig(t *testing.T) {
	config := DefaultHTTPSConfig()

	if config.MinTLSVersion != TLS12 {
		t.Errorf("expected MinTLSVersion TLS12, got %d", config.MinTLSVersion)
	}
	if config.MaxTLSVersion != TLS13 {
		t.Errorf("expected MaxTLSVersion TLS13, got %d", config.MaxTLSVersion)
	}
	if len(config.CipherSuites) == 0 {
		t.Error("expected CipherSuites to be set")
	}
	if config.Timeout != 30*time.Second {
		t.Errorf("expected Timeout 30s, got %v", config.Timeout)
	}
	if config.Compress {
		t.Error("expected compression off by default")
	}

	for _, suite := range RecommendedTLS12CipherSuites {
		if tls.CipherSuiteName(suite) == "" {
			t.Errorf("unknown cipher suite: %d", suite)
		}
	}
}

func TestNewHTTPSClient_NilConfig(t *testing.T) {
	client := NewHTTPSClient(nil)

	if client.client == nil {
		t.Error("expected http.Client to be initialized")
	}
	if client.config == nil {
		t.Error("expected config to be set to default")
	}
}

func TestHTTPSClient_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/EDIFACT" {
			t.Errorf("expected content-type 'application/EDIFACT', got '%s'", ct)
		}
		if r.Header.Get("User-Agent") != UserAgent {
			t.Errorf("expected User-Agent %q", UserAgent)
		}

		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("accepted"))
	}))
	defer server.Close()

	client := NewHTTPSClient(nil)

	response, err := client.Send(context.Background(), server.URL, []byte("UNB+UNOA:4'"), "application/EDIFACT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(response) != "accepted" {
		t.Errorf("unexpected response: %s", string(response))
	}
}

func TestHTTPSClient_Send_Compressed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != compression.ContentTypeGzip {
			t.Errorf("expected gzip content type, got '%s'", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if !compression.IsGzip(body) {
			t.Error("expected gzip body")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := DefaultHTTPSConfig()
	config.Compress = true

	if _, err := NewHTTPSClient(config).Send(context.Background(), server.URL, []byte("UNB+UNOA:4'"), "application/EDIFACT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPSClient_Send_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	_, err := NewHTTPSClient(nil).Send(context.Background(), server.URL, []byte("x"), "application/EDIFACT")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", statusErr.StatusCode)
	}
}

func TestHTTPSClient_Send_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	if _, err := NewHTTPSClient(nil).Send(ctx, server.URL, []byte("x"), "application/EDIFACT"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestHTTPSClient_DeliverToIntake(t *testing.T) {
	endpoint, pool := newIntakeServer(t)

	config := DefaultHTTPSConfig()
	config.RootCAs = pool
	client := NewHTTPSClient(config)
	ctx := context.Background()

	receipt, err := client.SendOrder(ctx, endpoint, testOrder("REF1"))
	if err != nil {
		t.Fatalf("SendOrder: %v", err)
	}
	if receipt.ControlRef != "REF1" || receipt.Lines != 1 || receipt.ID == "" {
		t.Errorf("unexpected receipt: %+v", receipt)
	}

	config.Compress = true
	receipt, err = NewHTTPSClient(config).SendEnvelope(ctx, endpoint, testOrder("REF2"))
	if err != nil {
		t.Fatalf("SendEnvelope: %v", err)
	}
	if receipt.Sender != "SENDER" {
		t.Errorf("unexpected sender %q", receipt.Sender)
	}

	_, err = client.SendOrder(ctx, endpoint, testOrder("REF1"))
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for a repeated control reference, got %v", err)
	}
}

func TestHTTPSClient_UntrustedServer(t *testing.T) {
	endpoint, _ := newIntakeServer(t)

	if _, err := NewHTTPSClient(nil).SendOrder(context.Background(), endpoint, testOrder("REF1")); err == nil {
		t.Error("expected TLS verification failure")
	}
}
