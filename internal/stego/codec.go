package stego

import (
	"encoding/binary"
)

// Frame layout: a 4-byte big-endian length header followed by the payload.
// Each byte is spread across 8 consecutive samples, least significant bit
// first, in the low bit of each sample.
const (
	headerBytes = 4
	headerBits  = headerBytes * 8
)

// Capacity returns the maximum payload size in bytes for a carrier with the
// given number of 8-bit samples.
//
// Returns an *InsufficientSamplesError when the carrier cannot hold the
// 32-bit frame header. Callers must validate payload size against Capacity
// before embedding rather than relying on Embed to fail.
func Capacity(sampleCount int) (int, error) {
	if sampleCount < headerBits {
		return 0, &InsufficientSamplesError{Samples: sampleCount}
	}
	return (sampleCount - headerBits) / 8, nil
}

// Embed hides payload in the low bits of samples and returns the modified
// copy. The input slice is never mutated; samples outside the written bit
// positions are byte-identical in the result, and every touched sample
// differs from the original by at most 1.
//
// An empty payload produces a valid frame with a zero header, but Extract
// treats a zero header as "no message" (see ErrNoMessage); callers that need
// the payload back should not embed zero bytes.
func Embed(samples []byte, payload []byte) ([]byte, error) {
	capacity, err := Capacity(len(samples))
	if err != nil {
		return nil, err
	}
	if len(payload) > capacity {
		return nil, &CapacityExceededError{Needed: len(payload), Available: capacity}
	}

	frame := make([]byte, headerBytes+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[headerBytes:], payload)

	out := make([]byte, len(samples))
	copy(out, samples)

	bitIndex := 0
	for _, b := range frame {
		for bitPos := 0; bitPos < 8; bitPos++ {
			bit := (b >> bitPos) & 1
			out[bitIndex] = (out[bitIndex] & 0xFE) | bit
			bitIndex++
		}
	}

	return out, nil
}

// Extract recovers the payload embedded in samples.
//
// It fails with ErrNoMessage when the frame header decodes to zero, with an
// *FrameExceedsBufferError when the decoded length cannot fit in the carrier,
// and with an *InsufficientSamplesError when the carrier cannot even hold a
// header.
func Extract(samples []byte) ([]byte, error) {
	if len(samples) < headerBits {
		return nil, &InsufficientSamplesError{Samples: len(samples)}
	}

	header, err := readBytes(samples, 0, headerBytes)
	if err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header)

	if length == 0 {
		return nil, ErrNoMessage
	}
	maxPossible := (len(samples) - headerBits) / 8
	if int64(length) > int64(maxPossible) {
		return nil, &FrameExceedsBufferError{Length: length, MaxPossible: maxPossible}
	}

	return readBytes(samples, headerBits, int(length))
}

// Probe reports whether samples plausibly contain an embedded frame. It is a
// best-effort heuristic: a header that happens to decode to a small nonzero
// length from unrelated image noise will report true. Probe never returns an
// error; any decode failure reads as false.
func Probe(samples []byte) bool {
	if len(samples) < headerBits {
		return false
	}
	header, err := readBytes(samples, 0, headerBytes)
	if err != nil {
		return false
	}
	length := binary.BigEndian.Uint32(header)
	maxPossible := (len(samples) - headerBits) / 8
	return length > 0 && int64(length) <= int64(maxPossible)
}

// readBytes reassembles count bytes from the low bits of samples starting at
// startBit, least significant bit first within each byte.
func readBytes(samples []byte, startBit, count int) ([]byte, error) {
	out := make([]byte, count)
	for byteIndex := 0; byteIndex < count; byteIndex++ {
		var b byte
		for bitPos := 0; bitPos < 8; bitPos++ {
			bitIndex := startBit + byteIndex*8 + bitPos
			if bitIndex >= len(samples) {
				return nil, &TruncatedBufferError{BitIndex: bitIndex, Samples: len(samples)}
			}
			b |= (samples[bitIndex] & 1) << bitPos
		}
		out[byteIndex] = b
	}
	return out, nil
}
