package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/joemunene-by/Steganography-tool/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(config.Default(), nil)
}

func writeServerPNG(t *testing.T, path string) {
	t.Helper()

	rng := rand.New(rand.NewSource(9))
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
}

// post sends a JSON body to the handler and decodes the JSON response.
func post(t *testing.T, handler http.Handler, path string, body, out interface{}) int {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if out != nil {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec.Code
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	handler := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/capacity", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleCapacity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "carrier.png")
	writeServerPNG(t, path)

	handler := newTestServer(t).Handler()

	var resp capacityResponse
	code := post(t, handler, "/api/capacity", capacityRequest{Path: path}, &resp)
	if code != http.StatusOK {
		t.Fatalf("status: got %d", code)
	}
	if resp.CapacityBytes != 3746 {
		t.Errorf("capacity: got %d, want 3746", resp.CapacityBytes)
	}

	// Missing path is a client error.
	if code := post(t, handler, "/api/capacity", capacityRequest{}, nil); code != http.StatusBadRequest {
		t.Errorf("empty path status: got %d", code)
	}

	// A well-formed request against a missing file is unprocessable.
	req := capacityRequest{Path: filepath.Join(dir, "missing.png")}
	if code := post(t, handler, "/api/capacity", req, nil); code != http.StatusUnprocessableEntity {
		t.Errorf("missing file status: got %d", code)
	}
}

func TestHandleEncodeDecode_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "carrier.png")
	output := filepath.Join(dir, "encoded.png")
	writeServerPNG(t, carrier)

	handler := newTestServer(t).Handler()

	encReq := encodeRequest{Input: carrier, Output: output, Message: "api message", Password: "pw"}
	var encResp encodeResponse
	if code := post(t, handler, "/api/encode", encReq, &encResp); code != http.StatusOK {
		t.Fatalf("encode status: got %d", code)
	}
	if encResp.Output != output {
		t.Errorf("encode output: got %s", encResp.Output)
	}

	var decResp decodeResponse
	decReq := decodeMessageRequest{Input: output, Password: "pw"}
	if code := post(t, handler, "/api/decode", decReq, &decResp); code != http.StatusOK {
		t.Fatalf("decode status: got %d", code)
	}
	if decResp.Message != "api message" {
		t.Errorf("decoded message: got %q", decResp.Message)
	}
	if decResp.SizeBytes != len("api message") {
		t.Errorf("size: got %d", decResp.SizeBytes)
	}

	// Wrong password is a payload failure, not a server error.
	decReq.Password = "wrong"
	if code := post(t, handler, "/api/decode", decReq, nil); code != http.StatusUnprocessableEntity {
		t.Errorf("wrong password status: got %d", code)
	}
}

func TestHandleEncode_Validation(t *testing.T) {
	handler := newTestServer(t).Handler()

	tests := []struct {
		name string
		req  encodeRequest
	}{
		{"missing input", encodeRequest{Output: "o.png", Message: "m"}},
		{"missing output", encodeRequest{Input: "i.png", Message: "m"}},
		{"empty message", encodeRequest{Input: "i.png", Output: "o.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := post(t, handler, "/api/encode", tt.req, nil); code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleEncode_OverwritePolicy(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "carrier.png")
	output := filepath.Join(dir, "encoded.png")
	writeServerPNG(t, carrier)

	// overwrite_existing is off by default, so re-encoding to the same
	// destination must be refused.
	handler := newTestServer(t).Handler()
	req := encodeRequest{Input: carrier, Output: output, Message: "first"}
	if code := post(t, handler, "/api/encode", req, nil); code != http.StatusOK {
		t.Fatalf("first encode status: got %d", code)
	}
	if code := post(t, handler, "/api/encode", req, nil); code != http.StatusUnprocessableEntity {
		t.Errorf("second encode status: got %d, want %d", code, http.StatusUnprocessableEntity)
	}

	cfg := config.Default()
	cfg.OverwriteExisting = true
	permissive := New(cfg, nil).Handler()
	if code := post(t, permissive, "/api/encode", req, nil); code != http.StatusOK {
		t.Errorf("encode with overwrite enabled status: got %d", code)
	}
}

func TestHandleEncode_CapacityExceeded(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "carrier.png")
	writeServerPNG(t, carrier)

	handler := newTestServer(t).Handler()

	req := encodeRequest{
		Input:   carrier,
		Output:  filepath.Join(dir, "out.png"),
		Message: string(bytes.Repeat([]byte("x"), 4000)),
	}
	var resp errorResponse
	code := post(t, handler, "/api/encode", req, &resp)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d", code, http.StatusUnprocessableEntity)
	}
	if resp.Error == "" {
		t.Error("error response has no message")
	}
}

func TestHandleDecode_NoMessage(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "clean.png")

	// All-even samples decode to an empty header.
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
		}
	}
	f, err := os.Create(carrier)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	f.Close()

	handler := newTestServer(t).Handler()
	if code := post(t, handler, "/api/decode", decodeMessageRequest{Input: carrier}, nil); code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", code, http.StatusUnprocessableEntity)
	}
}

func TestHandleCheck(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "carrier.png")
	output := filepath.Join(dir, "encoded.png")
	writeServerPNG(t, carrier)

	srv := newTestServer(t)
	handler := srv.Handler()

	encReq := encodeRequest{Input: carrier, Output: output, Message: "hidden"}
	if code := post(t, handler, "/api/encode", encReq, nil); code != http.StatusOK {
		t.Fatalf("encode failed with status %d", code)
	}

	var resp checkResponse
	if code := post(t, handler, "/api/check", checkRequest{Path: output}, &resp); code != http.StatusOK {
		t.Fatalf("check status: got %d", code)
	}
	if !resp.HasMessage {
		t.Error("check should report a message in the encoded image")
	}

	// A missing file reads as "no message", not as an error.
	missing := checkRequest{Path: filepath.Join(dir, "missing.png")}
	if code := post(t, handler, "/api/check", missing, &resp); code != http.StatusOK {
		t.Fatalf("check status for missing file: got %d", code)
	}
	if resp.HasMessage {
		t.Error("missing file should report no message")
	}
}

func TestHandleBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writeServerPNG(t, good)

	handler := newTestServer(t).Handler()

	req := batchRequest{Operations: []batchOperation{
		{Kind: "encode", Input: good, Output: filepath.Join(dir, "good_encoded.png"), Message: "batch"},
		{Kind: "encode", Input: filepath.Join(dir, "missing.png"), Output: filepath.Join(dir, "x.png"), Message: "batch"},
	}}

	var resp batchResponse
	if code := post(t, handler, "/api/batch", req, &resp); code != http.StatusOK {
		t.Fatalf("batch status: got %d", code)
	}
	if resp.Total != 2 || resp.Failures != 1 {
		t.Errorf("batch summary: total=%d failures=%d, want 2/1", resp.Total, resp.Failures)
	}
	for _, entry := range resp.Results {
		if entry.Status == "failure" && entry.Error == "" {
			t.Error("failed entry has no error text")
		}
	}

	// Unknown kinds and empty batches are client errors.
	bad := batchRequest{Operations: []batchOperation{{Kind: "transmogrify", Input: good}}}
	if code := post(t, handler, "/api/batch", bad, nil); code != http.StatusBadRequest {
		t.Errorf("unknown kind status: got %d", code)
	}
	if code := post(t, handler, "/api/batch", batchRequest{}, nil); code != http.StatusBadRequest {
		t.Errorf("empty batch status: got %d", code)
	}
}

func TestHandle_MalformedJSON(t *testing.T) {
	handler := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/capacity", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
