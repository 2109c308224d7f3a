package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/joemunene-by/Steganography-tool/internal/analysis"
	"github.com/joemunene-by/Steganography-tool/internal/batch"
	"github.com/joemunene-by/Steganography-tool/internal/config"
	"github.com/joemunene-by/Steganography-tool/internal/imaging"
	"github.com/joemunene-by/Steganography-tool/internal/stego"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 16 << 20 // 16 MiB

// Server exposes the steganography operations over a JSON HTTP API.
type Server struct {
	cfg      config.Config
	cache    *imaging.CarrierCache
	encoder  *stego.Encoder
	decoder  *stego.Decoder
	analyzer *analysis.Analyzer
	engine   *batch.Engine
	log      *zap.Logger
}

// New creates a server wired to the given configuration. A nil logger
// disables logging.
func New(cfg config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	encoder := stego.NewEncoder(log)
	encoder.Output = imaging.StoreOptions{
		JPEGQuality:   cfg.JPEGQuality,
		Overwrite:     cfg.OverwriteExisting,
		DefaultFormat: cfg.DefaultFormat,
	}
	decoder := stego.NewDecoder(log)
	return &Server{
		cfg:      cfg,
		cache:    imaging.NewCarrierCache(),
		encoder:  encoder,
		decoder:  decoder,
		analyzer: analysis.NewAnalyzer(log),
		engine:   batch.NewEngine(cfg.MaxWorkers, encoder, decoder, log),
		log:      log,
	}
}

// Handler returns the HTTP handler with all API routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/capacity", s.handle(s.handleCapacity))
	mux.HandleFunc("/api/encode", s.handle(s.handleEncode))
	mux.HandleFunc("/api/decode", s.handle(s.handleDecode))
	mux.HandleFunc("/api/check", s.handle(s.handleCheck))
	mux.HandleFunc("/api/analyze", s.handle(s.handleAnalyze))
	mux.HandleFunc("/api/compare", s.handle(s.handleCompare))
	mux.HandleFunc("/api/batch", s.handle(s.handleBatch))
	return mux
}

// Run starts the HTTP server on the configured listen address and blocks
// until it exits.
func (s *Server) Run() error {
	s.log.Info("http server listening", zap.String("addr", s.cfg.ListenAddr))
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Handler(),
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// handlerFunc is an API endpoint: it decodes its own request type and
// returns either a response value or an error.
type handlerFunc func(r *http.Request) (interface{}, error)

// handle wraps an endpoint with method checking, body limiting, and the
// uniform response envelope.
func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed: %s", r.Method))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		result, err := fn(r)
		if err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.log.Debug("request failed", zap.Int("status", status), zap.Error(err))
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeRequest unmarshals a JSON request body into dst.
func decodeRequest(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &badRequestError{reason: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

// badRequestError marks client-side validation failures.
type badRequestError struct {
	reason string
}

func (e *badRequestError) Error() string {
	return e.reason
}
