// Package server provides the HTTP server for the EDIFACT intake service.
//
// # Interchange API
//
//   - POST /edifact/interchanges                 - Receive an interchange (EDIFACT, edixml or XHE; optionally gzip)
//   - GET  /edifact/interchanges                 - List received interchanges
//   - GET  /edifact/interchanges/{id}            - Get interchange metadata
//   - GET  /edifact/interchanges/{id}/content    - Export as ?format=edifact|xml|xhe
//   - GET  /edifact/interchanges/{id}/lines      - Order lines as JSON
//   - GET  /edifact/interchanges/{id}/segments   - Segments matching ?xpath= over the XML form
//
// The /edifact prefix is the configured server.basePath.
//
// # Health
//
//   - GET /health  - Liveness probe
//   - GET /ready   - Readiness probe (checks the store)
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirosfoundation/go-edifact/internal/config"
	"github.com/sirosfoundation/go-edifact/internal/intake"
	"github.com/sirosfoundation/go-edifact/internal/storage"
	"github.com/sirosfoundation/go-edifact/pkg/edifact"
)

// Server is the EDIFACT intake HTTP server
type Server struct {
	config  *config.Config
	logger  *slog.Logger
	httpSrv *http.Server
	intake  *intake.Service
}

// New creates a new server around an intake service
func New(cfg *config.Config, svc *intake.Service, logger *slog.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		intake: svc,
	}

	// Set up HTTP routes
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler returns the routed handler, for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start begins listening on the configured port
func (s *Server) Start() error {
	s.httpSrv.Addr = fmt.Sprintf(":%d", s.config.Server.Port)
	s.logger.Info("starting server", "addr", s.httpSrv.Addr, "tls", s.config.Server.TLS.Enabled)
	if s.config.Server.TLS.Enabled {
		return s.httpSrv.ListenAndServeTLS(
			s.config.Server.TLS.CertFile,
			s.config.Server.TLS.KeyFile,
		)
	}
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	basePath := strings.TrimSuffix(s.config.Server.BasePath, "/")

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)

	mux.HandleFunc("POST "+basePath+"/interchanges", s.handleReceive)
	mux.HandleFunc("GET "+basePath+"/interchanges", s.handleList)
	mux.HandleFunc("GET "+basePath+"/interchanges/{id}", s.handleGet)
	mux.HandleFunc("GET "+basePath+"/interchanges/{id}/content", s.handleContent)
	mux.HandleFunc("GET "+basePath+"/interchanges/{id}/lines", s.handleLines)
	mux.HandleFunc("GET "+basePath+"/interchanges/{id}/segments", s.handleSegments)
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.intake.Ping(r.Context()); err != nil {
		s.jsonError(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	s.jsonResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
}

// Interchange handlers

func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("received interchange",
		"content-type", r.Header.Get("Content-Type"),
		"content-length", r.ContentLength,
	)

	body := io.Reader(r.Body)
	if limit := s.config.Intake.MaxSize; limit > 0 {
		body = http.MaxBytesReader(w, r.Body, int64(limit)+1)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.jsonError(w, intake.ErrTooLarge.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		s.jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	receipt, err := s.intake.Receive(r.Context(), raw)
	if err != nil {
		s.receiveError(w, err)
		return
	}

	w.Header().Set("Location", strings.TrimSuffix(s.config.Server.BasePath, "/")+"/interchanges/"+receipt.ID)
	s.jsonResponse(w, receipt, http.StatusCreated)
}

func (s *Server) receiveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, intake.ErrDuplicate):
		s.jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, intake.ErrTooLarge):
		s.jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, intake.ErrInvalidDocument), errors.Is(err, intake.ErrNoInterchangeHeader):
		resp := map[string]interface{}{"error": err.Error()}
		var syntaxErr *edifact.SyntaxError
		if errors.As(err, &syntaxErr) && syntaxErr.Line > 0 {
			resp["line"] = syntaxErr.Line
		}
		s.jsonResponse(w, resp, http.StatusBadRequest)
	default:
		s.logger.Error("failed to receive interchange", "error", err)
		s.jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := &storage.InterchangeFilter{
		Sender:      query.Get("sender"),
		Recipient:   query.Get("recipient"),
		MessageType: query.Get("messageType"),
	}
	if sinceStr := query.Get("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			s.jsonError(w, "since must be an RFC 3339 timestamp", http.StatusBadRequest)
			return
		}
		filter.Since = &since
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50 // Default limit
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	receipts, err := s.intake.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list interchanges", "error", err)
		s.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, map[string]interface{}{
		"interchanges": receipts,
		"total":        len(receipts),
	}, http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ic, err := s.intake.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.lookupError(w, err)
		return
	}
	s.jsonResponse(w, ic, http.StatusOK)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	format, err := intake.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.intake.Export(r.Context(), r.PathValue("id"), format)
	if err != nil {
		s.lookupError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// LineResponse is the JSON form of an order line
type LineResponse struct {
	Line      string `json:"line"`
	Item      string `json:"item,omitempty"`
	Quantity  string `json:"quantity,omitempty"`
	Price     string `json:"price,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Reference string `json:"reference,omitempty"`
}

func (s *Server) handleLines(w http.ResponseWriter, r *http.Request) {
	order, err := s.intake.Order(r.Context(), r.PathValue("id"))
	if err != nil {
		s.lookupError(w, err)
		return
	}

	lines := order.OrderLines()
	resp := make([]LineResponse, 0, len(lines))
	for _, l := range lines {
		resp = append(resp, LineResponse{
			Line:      l.Line.ComponentOr(0, 0, ""),
			Item:      l.Line.ComponentOr(2, 0, ""),
			Quantity:  qualifiedValue(l.Quantity),
			Price:     qualifiedValue(l.Price),
			Amount:    qualifiedValue(l.Amount),
			Reference: qualifiedValue(l.Reference),
		})
	}

	s.jsonResponse(w, resp, http.StatusOK)
}

// SegmentResponse is the JSON form of a segment
type SegmentResponse struct {
	Tag      string     `json:"tag"`
	Position int        `json:"position"`
	Elements [][]string `json:"elements"`
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	expr := r.URL.Query().Get("xpath")
	if expr == "" {
		s.jsonError(w, "xpath parameter is required", http.StatusBadRequest)
		return
	}

	segs, err := s.intake.Query(r.Context(), r.PathValue("id"), expr)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.lookupError(w, err)
			return
		}
		s.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := make([]SegmentResponse, 0, len(segs))
	for _, seg := range segs {
		resp = append(resp, SegmentResponse{
			Tag:      seg.Tag(),
			Position: seg.Position(),
			Elements: seg.Elements(),
		})
	}
	s.jsonResponse(w, resp, http.StatusOK)
}

// qualifiedValue reads the value of a qualifier:value composite such as
// QTY+21:5.
func qualifiedValue(seg *edifact.Segment) string {
	if seg == nil {
		return ""
	}
	return seg.ComponentOr(0, 1, "")
}

func (s *Server) lookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.jsonError(w, "interchange not found", http.StatusNotFound)
		return
	}
	s.logger.Error("failed to load interchange", "error", err)
	s.jsonError(w, "internal error", http.StatusInternalServerError)
}

// Helpers

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonError(w http.ResponseWriter, message string, status int) {
	s.jsonResponse(w, map[string]string{"error": message}, status)
}
