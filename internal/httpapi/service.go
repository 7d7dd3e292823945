package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ib-77/vrcdecode/internal/output"
	"github.com/ib-77/vrcdecode/pkg/vrc"
)

const (
	// defaultMaxRequestBodySize is the maximum size of request body (1MB).
	defaultMaxRequestBodySize = 1 << 20

	maxBatchItems = 1000
)

// Service implements the HTTP decode API.
type Service struct {
	decoder        *vrc.Decoder
	logger         *zap.Logger
	workers        int
	maxBody        int64
	healthResponse []byte
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers sets the number of goroutines a batch request may use.
func WithWorkers(n int) Option {
	return func(s *Service) { s.workers = n }
}

func WithMaxRequestBody(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// NewService creates a new HTTP API service.
func NewService(decoder *vrc.Decoder, opts ...Option) *Service {
	healthJSON, _ := json.Marshal(HealthResponse{
		Status:     "ok",
		SchemaSize: vrc.SchemaSize,
		MinFields:  vrc.MinFields,
	})

	s := &Service{
		decoder:        decoder,
		logger:         zap.NewNop(),
		maxBody:        defaultMaxRequestBodySize,
		healthResponse: healthJSON,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRoutes registers all HTTP API routes with the given router.
// Routes sit on router itself so a method mismatch answers 405.
func (s *Service) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/decode", s.handleDecode).Methods(http.MethodPost)
	router.HandleFunc("/v1/decode/batch", s.handleDecodeBatch).Methods(http.MethodPost)
	router.HandleFunc("/v1/schema", s.handleSchema).Methods(http.MethodGet)
}

func (s *Service) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Error("error encoding response", zap.Error(err))
		}
	}
}

func (s *Service) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{Error: message})
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	SchemaSize int    `json:"schemaSize"`
	MinFields  int    `json:"minFields"`
}

// DecodeRequest carries one reader capture.
type DecodeRequest = vrc.RawCapture

type BatchDecodeRequest struct {
	Items []DecodeRequest `json:"items"`
}

type BatchDecodeResponse struct {
	Results []output.Report `json:"results"`
	Failed  int             `json:"failed"`
}

func (s *Service) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// handleDecode answers 200 with the report of a successful decode and 422
// with the report of a failed one, empty text included.
func (s *Service) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	start := time.Now()
	d, err := s.decoder.DecodeCapture(r.Context(), req)
	report := output.NewReport(d, err, time.Since(start))

	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
	}
	s.respondJSON(w, status, report)
}

// handleDecodeBatch always answers 200; every item carries its own outcome.
func (s *Service) handleDecodeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchDecodeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		s.respondError(w, http.StatusBadRequest, "items cannot be empty")
		return
	}
	if len(req.Items) > maxBatchItems {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d items per batch", maxBatchItems))
		return
	}

	texts := make([]string, len(req.Items))
	for i, item := range req.Items {
		s.logger.Debug("batch item",
			zap.Int("index", i),
			zap.String("format", item.FormatLabel),
			zap.Float64("confidence", item.Confidence),
			zap.Int("length", len(item.Text)))
		texts[i] = item.Text
	}

	reports := output.FromOutcomes(s.decoder.DecodeAll(r.Context(), texts, s.workers))
	s.logger.Debug("batch decoded",
		zap.Int("items", len(reports)),
		zap.Int("failed", output.Failed(reports)))

	s.respondJSON(w, http.StatusOK, BatchDecodeResponse{Results: reports, Failed: output.Failed(reports)})
}

func (s *Service) handleSchema(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, vrc.Schema())
}

func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(s.healthResponse); err != nil {
		s.logger.Error("error writing health response", zap.Error(err))
	}
}
