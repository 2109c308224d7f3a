package stego

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

// makeSamples creates a deterministic pseudo-random sample buffer.
func makeSamples(n int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]byte, n)
	rng.Read(samples)
	return samples
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		want    int
		wantErr bool
	}{
		{"exactly header", 32, 0, false},
		{"header plus one byte", 40, 1, false},
		{"100x100 RGB", 30000, 3746, false},
		{"one below header", 31, 0, true},
		{"zero", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Capacity(tt.samples)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Capacity should fail")
				}
				var insufficient *InsufficientSamplesError
				if !errors.As(err, &insufficient) {
					t.Fatalf("expected InsufficientSamplesError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Capacity failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Capacity: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEmbedExtract_RoundTrip(t *testing.T) {
	samples := makeSamples(30000, 1)

	tests := []struct {
		name    string
		payload []byte
	}{
		{"single byte", []byte{0x42}},
		{"ascii text", []byte("This is a test message")},
		{"binary with nulls", []byte{0x00, 0xFF, 0x00, 0x7F, 0x00}},
		{"multi-kilobyte", makeSamples(3000, 2)},
		{"exactly capacity", makeSamples(3746, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Embed(samples, tt.payload)
			if err != nil {
				t.Fatalf("Embed failed: %v", err)
			}

			got, err := Extract(encoded)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(tt.payload))
			}
		})
	}
}

func TestEmbed_CapacityExceeded(t *testing.T) {
	samples := makeSamples(30000, 1)

	// 3746 bytes fit exactly; 3747 must fail.
	if _, err := Embed(samples, makeSamples(3746, 4)); err != nil {
		t.Fatalf("Embed at exact capacity failed: %v", err)
	}

	_, err := Embed(samples, makeSamples(3747, 4))
	if err == nil {
		t.Fatal("Embed should fail one byte over capacity")
	}
	var capErr *CapacityExceededError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityExceededError, got %T", err)
	}
	if capErr.Needed != 3747 || capErr.Available != 3746 {
		t.Errorf("error fields: got needed=%d available=%d, want 3747/3746", capErr.Needed, capErr.Available)
	}
}

func TestEmbed_DoesNotMutateInput(t *testing.T) {
	samples := makeSamples(1000, 5)
	original := make([]byte, len(samples))
	copy(original, samples)

	if _, err := Embed(samples, []byte("hello")); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if !bytes.Equal(samples, original) {
		t.Error("Embed mutated its input buffer")
	}
}

func TestEmbed_NonInterference(t *testing.T) {
	samples := makeSamples(1000, 6)
	payload := []byte("xyz")

	encoded, err := Embed(samples, payload)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	usedBits := headerBits + len(payload)*8
	for i := range samples {
		diff := int(samples[i]) - int(encoded[i])
		if diff < 0 {
			diff = -diff
		}
		if i < usedBits {
			if diff > 1 {
				t.Fatalf("sample %d changed by %d, max is 1", i, diff)
			}
		} else if diff != 0 {
			t.Fatalf("sample %d outside the frame was modified", i)
		}
	}
}

func TestEmbed_Deterministic(t *testing.T) {
	samples := makeSamples(1000, 7)
	payload := []byte("same in, same out")

	first, err := Embed(samples, payload)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	second, err := Embed(samples, payload)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Embed is not deterministic")
	}
}

func TestExtract_ZeroLengthIsNoMessage(t *testing.T) {
	samples := makeSamples(1000, 8)

	encoded, err := Embed(samples, nil)
	if err != nil {
		t.Fatalf("Embed of empty payload failed: %v", err)
	}

	_, err = Extract(encoded)
	if !errors.Is(err, ErrNoMessage) {
		t.Fatalf("expected ErrNoMessage, got %v", err)
	}
}

func TestExtract_FrameExceedsBuffer(t *testing.T) {
	// All-ones low bits decode to a huge length header.
	samples := make([]byte, 1000)
	for i := range samples {
		samples[i] = 0xFF
	}

	_, err := Extract(samples)
	if err == nil {
		t.Fatal("Extract should fail")
	}
	var frameErr *FrameExceedsBufferError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected FrameExceedsBufferError, got %T: %v", err, err)
	}
	if frameErr.MaxPossible != (1000-32)/8 {
		t.Errorf("MaxPossible: got %d, want %d", frameErr.MaxPossible, (1000-32)/8)
	}
}

func TestExtract_TooFewSamples(t *testing.T) {
	_, err := Extract(make([]byte, 31))
	var insufficient *InsufficientSamplesError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientSamplesError, got %v", err)
	}
}

func TestProbe(t *testing.T) {
	// All-zero low bits: header decodes to zero, no message.
	clean := make([]byte, 1000)
	for i := range clean {
		clean[i] = 0xA0 // even value, LSB 0
	}
	if Probe(clean) {
		t.Error("Probe should be false for a clean carrier")
	}

	encoded, err := Embed(clean, []byte("payload"))
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if !Probe(encoded) {
		t.Error("Probe should be true after a successful Embed")
	}

	if Probe(make([]byte, 10)) {
		t.Error("Probe should be false for a carrier below header size")
	}
}

func TestWireFormat_HeaderBitOrder(t *testing.T) {
	// A 1-byte payload of 0xA5 gives a known bit pattern: header is
	// 00 00 00 01 big-endian, so sample 24 (bit 0 of header byte 3)
	// carries 1 and all other header samples carry 0; payload bits follow
	// LSB-first.
	samples := make([]byte, 100)
	encoded, err := Embed(samples, []byte{0xA5})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	for i := 0; i < 32; i++ {
		want := byte(0)
		if i == 24 {
			want = 1
		}
		if encoded[i]&1 != want {
			t.Fatalf("header sample %d: got bit %d, want %d", i, encoded[i]&1, want)
		}
	}

	// 0xA5 = 1010_0101: LSB-first order is 1,0,1,0,0,1,0,1.
	wantBits := []byte{1, 0, 1, 0, 0, 1, 0, 1}
	for i, want := range wantBits {
		if encoded[32+i]&1 != want {
			t.Fatalf("payload sample %d: got bit %d, want %d", i, encoded[32+i]&1, want)
		}
	}
}
