package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/joemunene-by/Steganography-tool/internal/batch"
	"github.com/joemunene-by/Steganography-tool/internal/crypto"
	"github.com/joemunene-by/Steganography-tool/internal/imaging"
	"github.com/joemunene-by/Steganography-tool/internal/stego"
)

// statusFor maps operation errors to HTTP status codes: client mistakes are
// 400, well-formed requests that fail against the carrier or payload are
// 422, everything else is 500.
func statusFor(err error) int {
	var badReq *badRequestError
	if errors.As(err, &badReq) {
		return http.StatusBadRequest
	}

	var (
		unreadable   *imaging.UnreadableImageError
		unwritable   *imaging.UnwritableDestinationError
		insufficient *stego.InsufficientSamplesError
		capacity     *stego.CapacityExceededError
		frameBound   *stego.FrameExceedsBufferError
		truncated    *stego.TruncatedBufferError
		decryption   *crypto.DecryptionFailedError
	)
	switch {
	case errors.As(err, &unreadable),
		errors.As(err, &unwritable),
		errors.As(err, &insufficient),
		errors.As(err, &capacity),
		errors.As(err, &frameBound),
		errors.As(err, &truncated),
		errors.As(err, &decryption),
		errors.Is(err, stego.ErrNoMessage):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

type capacityRequest struct {
	Path string `json:"path"`
}

type capacityResponse struct {
	Path          string  `json:"path"`
	CapacityBytes int     `json:"capacity_bytes"`
	CapacityKB    float64 `json:"capacity_kb"`
}

func (s *Server) handleCapacity(r *http.Request) (interface{}, error) {
	var req capacityRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, &badRequestError{reason: "path is required"}
	}

	capacity, err := s.encoder.CapacityOf(req.Path)
	if err != nil {
		return nil, err
	}
	return capacityResponse{
		Path:          req.Path,
		CapacityBytes: capacity,
		CapacityKB:    float64(capacity) / 1024,
	}, nil
}

type encodeRequest struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	Message  string `json:"message"`
	Password string `json:"password,omitempty"`
	Compress bool   `json:"compress,omitempty"`
}

type encodeResponse struct {
	Output string `json:"output"`
}

func (s *Server) handleEncode(r *http.Request) (interface{}, error) {
	var req encodeRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}
	switch {
	case req.Input == "":
		return nil, &badRequestError{reason: "input is required"}
	case req.Output == "":
		return nil, &badRequestError{reason: "output is required"}
	case req.Message == "":
		return nil, &badRequestError{reason: "message cannot be empty"}
	}

	err := s.encoder.Encode(req.Input, []byte(req.Message), req.Output, stego.EncodeOptions{
		Password: req.Password,
		Compress: req.Compress || s.cfg.UseCompression,
	})
	if err != nil {
		return nil, err
	}
	return encodeResponse{Output: req.Output}, nil
}

type decodeMessageRequest struct {
	Input    string `json:"input"`
	Password string `json:"password,omitempty"`
}

// decodeResponse carries the message as text when it is valid UTF-8 and as
// base64 otherwise.
type decodeResponse struct {
	Message       string `json:"message,omitempty"`
	MessageBase64 string `json:"message_base64,omitempty"`
	SizeBytes     int    `json:"size_bytes"`
}

func (s *Server) handleDecode(r *http.Request) (interface{}, error) {
	var req decodeMessageRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}
	if req.Input == "" {
		return nil, &badRequestError{reason: "input is required"}
	}

	message, err := s.decoder.Decode(req.Input, stego.DecodeOptions{Password: req.Password})
	if err != nil {
		return nil, err
	}

	resp := decodeResponse{SizeBytes: len(message)}
	if utf8.Valid(message) {
		resp.Message = string(message)
	} else {
		resp.MessageBase64 = base64.StdEncoding.EncodeToString(message)
	}
	return resp, nil
}

type checkRequest struct {
	Path string `json:"path"`
}

type checkResponse struct {
	Path       string `json:"path"`
	HasMessage bool   `json:"has_message"`
}

func (s *Server) handleCheck(r *http.Request) (interface{}, error) {
	var req checkRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, &badRequestError{reason: "path is required"}
	}

	// Route through the cache: check is the endpoint most likely to be
	// polled repeatedly against the same file.
	if s.cfg.CacheImages {
		carrier, err := s.cache.Load(req.Path)
		if err != nil {
			return checkResponse{Path: req.Path, HasMessage: false}, nil
		}
		return checkResponse{Path: req.Path, HasMessage: stego.Probe(carrier.Samples)}, nil
	}
	return checkResponse{Path: req.Path, HasMessage: s.decoder.HasMessage(req.Path)}, nil
}

type analyzeRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleAnalyze(r *http.Request) (interface{}, error) {
	var req analyzeRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, &badRequestError{reason: "path is required"}
	}
	return s.analyzer.Analyze(req.Path)
}

type compareRequest struct {
	Original string `json:"original"`
	Encoded  string `json:"encoded"`
}

func (s *Server) handleCompare(r *http.Request) (interface{}, error) {
	var req compareRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}
	if req.Original == "" || req.Encoded == "" {
		return nil, &badRequestError{reason: "original and encoded are required"}
	}
	return s.analyzer.Compare(req.Original, req.Encoded)
}

type batchRequest struct {
	Operations []batchOperation `json:"operations"`
}

type batchOperation struct {
	Kind     string `json:"kind"`
	Input    string `json:"input"`
	Output   string `json:"output,omitempty"`
	Message  string `json:"message,omitempty"`
	Password string `json:"password,omitempty"`
	Compress bool   `json:"compress,omitempty"`
	RawBytes bool   `json:"raw_bytes,omitempty"`
}

type batchResultEntry struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Input   string `json:"input"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type batchResponse struct {
	Total    int                `json:"total"`
	Failures int                `json:"failures"`
	Results  []batchResultEntry `json:"results"`
}

func (s *Server) handleBatch(r *http.Request) (interface{}, error) {
	var req batchRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}
	if len(req.Operations) == 0 {
		return nil, &badRequestError{reason: "operations cannot be empty"}
	}

	ops := make([]batch.Operation, 0, len(req.Operations))
	for _, op := range req.Operations {
		switch batch.Kind(op.Kind) {
		case batch.KindEncode:
			ops = append(ops, batch.NewEncodeOperation(op.Input, []byte(op.Message), op.Output, op.Password, op.Compress))
		case batch.KindDecode:
			ops = append(ops, batch.NewDecodeOperation(op.Input, op.Output, op.Password, op.RawBytes))
		default:
			return nil, &badRequestError{reason: "operation kind must be encode or decode"}
		}
	}

	results := s.engine.Run(ops)

	resp := batchResponse{Total: len(results), Results: make([]batchResultEntry, 0, len(results))}
	for _, res := range results {
		entry := batchResultEntry{
			ID:     res.Operation.ID,
			Kind:   string(res.Operation.Kind),
			Input:  res.Operation.InputPath,
			Status: string(res.Status),
			Error:  res.Err,
		}
		if res.Status == batch.StatusFailure {
			resp.Failures++
		}
		if len(res.Message) > 0 && utf8.Valid(res.Message) {
			entry.Message = string(res.Message)
		}
		resp.Results = append(resp.Results, entry)
	}
	return resp, nil
}
