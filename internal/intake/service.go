// Package intake implements the receive pipeline for EDIFACT interchanges.
//
// A received payload is inflated when gzip compressed, decoded (plain
// EDIFACT, the XML rendering produced by edixml, or an XHE envelope),
// checked against recently seen interchange control references and stored.
// Stored interchanges can be exported again in any of the three formats.
package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sirosfoundation/go-edifact/internal/storage"
	"github.com/sirosfoundation/go-edifact/pkg/compression"
	"github.com/sirosfoundation/go-edifact/pkg/edifact"
	"github.com/sirosfoundation/go-edifact/pkg/edixml"
	"github.com/sirosfoundation/go-edifact/pkg/reliability"
	"github.com/sirosfoundation/go-edifact/pkg/xhe"
)

var (
	// ErrDuplicate is returned when the sender already delivered an
	// interchange with the same control reference.
	ErrDuplicate = errors.New("duplicate interchange")

	// ErrTooLarge is returned when a payload exceeds the size limit.
	ErrTooLarge = errors.New("interchange exceeds size limit")

	// ErrNoInterchangeHeader is returned for documents without a UNB segment.
	ErrNoInterchangeHeader = errors.New("document has no UNB interchange header")

	// ErrInvalidDocument wraps decoding failures: bad gzip data, EDIFACT
	// syntax errors and malformed XML.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrUnknownFormat is returned by Export for unsupported formats.
	ErrUnknownFormat = errors.New("unknown export format")
)

// Format selects an export representation
type Format string

const (
	FormatEDIFACT Format = "edifact"
	FormatXML     Format = "xml"
	FormatXHE     Format = "xhe"
)

// ContentType returns the media type of the format.
func (f Format) ContentType() string {
	if f == FormatEDIFACT {
		return xhe.ContentTypeEDIFACT
	}
	return "application/xml"
}

// ParseFormat maps a name to a Format. An empty name selects FormatEDIFACT.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "", FormatEDIFACT:
		return FormatEDIFACT, nil
	case FormatXML, FormatXHE:
		return Format(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Receipt summarises a stored interchange
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

// Service runs the receive pipeline
type Service struct {
	store    storage.InterchangeStore
	detector *reliability.DuplicateDetector
	codec    *compression.Codec
	parser   *edifact.Parser
	logger   *slog.Logger

	delimiters edifact.Delimiters
	maxSize  int
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger. The parser logs through it as well.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithDuplicateWindow sets how long control references are remembered in
// memory. The store is consulted regardless.
func WithDuplicateWindow(window time.Duration) Option {
	return func(s *Service) {
		s.detector = reliability.NewDuplicateDetector(window)
	}
}

// WithMaxSize limits the payload size in bytes, checked before and after
// decompression. Zero disables the limit.
func WithMaxSize(n int) Option {
	return func(s *Service) {
		s.maxSize = n
	}
}

// WithDelimiters sets the delimiters assumed for documents without UNA.
func WithDelimiters(d edifact.Delimiters) Option {
	return func(s *Service) {
		s.delimiters = d
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a receive pipeline backed by store
func New(store storage.InterchangeStore, opts ...Option) *Service {
	s := &Service{
		store:      store,
		detector:   reliability.NewDuplicateDetector(24 * time.Hour),
		codec:      compression.NewCodec(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		delimiters: edifact.DefaultDelimiters(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = edifact.NewParser(edifact.WithDelimiters(s.delimiters), edifact.WithLogger(s.logger))
	return s
}

// Receive decodes, deduplicates and stores one interchange.
func (s *Service) Receive(ctx context.Context, raw []byte) (*Receipt, error) {
	if s.maxSize > 0 && len(raw) > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(raw))
	}

	data, err := s.codec.Unwrap(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if s.maxSize > 0 && len(data) > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes inflated", ErrTooLarge, len(data))
	}

	order, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if _, ok := order.InterchangeHeader(); !ok {
		return nil, ErrNoInterchangeHeader
	}

	sender, recipient, ref := order.Sender(), order.Recipient(), order.ControlReference()
	log := s.logger.With(
		slog.String("sender", sender),
		slog.String("recipient", recipient),
		slog.String("control_ref", ref),
	)

	now := s.now()
	key := reliability.Key(sender, recipient, ref)
	if s.detector.Check(key, now) {
		log.Warn("duplicate interchange rejected")
		return nil, fmt.Errorf("%w: %s from %s", ErrDuplicate, ref, sender)
	}

	switch existing, err := s.store.FindByControlRef(ctx, sender, ref); {
	case err == nil:
		log.Warn("duplicate interchange rejected", slog.String("existing_id", existing.ID))
		return nil, fmt.Errorf("%w: %s from %s", ErrDuplicate, ref, sender)
	case !errors.Is(err, storage.ErrNotFound):
		s.detector.Forget(key)
		return nil, fmt.Errorf("checking for duplicates: %w", err)
	}

	ic := &storage.Interchange{
		ID:          uuid.NewString(),
		Sender:      sender,
		Recipient:   recipient,
		ControlRef:  ref,
		MessageRef:  order.MessageReference(),
		MessageType: order.MessageType(),
		Content:     order.Text(),
		Segments:    segmentCount(order),
		Lines:       len(order.OrderLines()),
		ReceivedAt:  now,
	}
	if err := s.store.SaveInterchange(ctx, ic); err != nil {
		s.detector.Forget(key)
		return nil, fmt.Errorf("storing interchange: %w", err)
	}

	log.Info("interchange received",
		slog.String("id", ic.ID),
		slog.String("message_type", ic.MessageType),
		slog.Int("segments", ic.Segments),
		slog.Int("lines", ic.Lines),
		slog.Bool("compressed", compression.IsGzip(raw)),
	)

	return receiptFor(ic), nil
}

// decode accepts plain EDIFACT, an edixml document or an XHE envelope.
func (s *Service) decode(data []byte) (*edifact.Order, error) {
	trimmed := bytes.TrimSpace(data)
	if !bytes.HasPrefix(trimmed, []byte("<")) {
		return s.parser.ParseDocument(string(data))
	}

	if envelope, err := xhe.Parse(trimmed); err == nil {
		payload := envelope.FirstPayload()
		if payload == nil {
			return nil, fmt.Errorf("XHE envelope %s has no payload", envelope.Header.ID)
		}
		return payload.Order()
	}

	order, err := edixml.Unmarshal(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decoding XML interchange: %w", err)
	}
	return order, nil
}

// Get returns a stored interchange.
func (s *Service) Get(ctx context.Context, id string) (*storage.Interchange, error) {
	return s.store.GetInterchange(ctx, id)
}

// List returns stored interchanges, newest first.
func (s *Service) List(ctx context.Context, filter *storage.InterchangeFilter) ([]*Receipt, error) {
	interchanges, err := s.store.ListInterchanges(ctx, filter)
	if err != nil {
		return nil, err
	}
	receipts := make([]*Receipt, 0, len(interchanges))
	for _, ic := range interchanges {
		receipts = append(receipts, receiptFor(ic))
	}
	return receipts, nil
}

// Order re-parses a stored interchange.
func (s *Service) Order(ctx context.Context, id string) (*edifact.Order, error) {
	ic, err := s.store.GetInterchange(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := s.parser.ParseDocument(ic.Content)
	if err != nil {
		return nil, fmt.Errorf("stored interchange %s: %w", id, err)
	}
	return order, nil
}

// Query selects segments of a stored interchange with an XPath expression
// over its XML rendering.
func (s *Service) Query(ctx context.Context, id, expr string) ([]edifact.Segment, error) {
	order, err := s.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	return edixml.QueryOrder(order, expr)
}

// Export renders a stored interchange in the given format.
func (s *Service) Export(ctx context.Context, id string, format Format) ([]byte, error) {
	switch format {
	case FormatEDIFACT, FormatXML, FormatXHE:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	order, err := s.Order(ctx, id)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXML:
		return edixml.Marshal(order)
	case FormatXHE:
		envelope, err := xhe.FromOrder(order, "")
		if err != nil {
			return nil, err
		}
		return envelope.Marshal()
	default:
		return []byte(order.Text()), nil
	}
}

// Run prunes the in-memory duplicate detector every interval until ctx is
// done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.detector.Run(ctx, interval)
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func segmentCount(o *edifact.Order) int {
	n := o.Len()
	if _, ok := o.InterchangeHeader(); ok {
		n++
	}
	if _, ok := o.MessageHeader(); ok {
		n++
	}
	return n
}

func receiptFor(ic *storage.Interchange) *Receipt {
	return &Receipt{
		ID:          ic.ID,
		Sender:      ic.Sender,
		Recipient:   ic.Recipient,
		ControlRef:  ic.ControlRef,
		MessageType: ic.MessageType,
		Segments:    ic.Segments,
		Lines:       ic.Lines,
		ReceivedAt:  ic.ReceivedAt,
	}
}
