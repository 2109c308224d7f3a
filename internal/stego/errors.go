package stego

import (
	"errors"
	"fmt"
)

// ErrNoMessage is reported when a carrier's frame header decodes to zero.
// A zero length is treated as "nothing embedded here", not as a valid
// empty-payload frame.
var ErrNoMessage = errors.New("no hidden message detected")

// InsufficientSamplesError indicates a carrier too small to hold even the
// 32-bit frame header.
type InsufficientSamplesError struct {
	Samples int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("carrier has %d samples, need at least %d for the frame header", e.Samples, headerBits)
}

// CapacityExceededError indicates a payload larger than the carrier can hold.
type CapacityExceededError struct {
	Needed    int // payload size in bytes
	Available int // carrier capacity in bytes
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("message too large: %d bytes, maximum capacity: %d bytes", e.Needed, e.Available)
}

// FrameExceedsBufferError indicates a decoded frame length that cannot fit
// in the carrier it was read from. Either the carrier never held a message
// or it was re-encoded through a lossy format.
type FrameExceedsBufferError struct {
	Length      uint32 // decoded header value
	MaxPossible int    // largest payload the carrier could hold
}

func (e *FrameExceedsBufferError) Error() string {
	return fmt.Sprintf("message length (%d) exceeds maximum possible length (%d)", e.Length, e.MaxPossible)
}

// TruncatedBufferError indicates the sample sequence ended mid-frame.
// The header bound check catches this for well-formed carriers; it remains
// as a defensive guard against truncated sample sequences.
type TruncatedBufferError struct {
	BitIndex int
	Samples  int
}

func (e *TruncatedBufferError) Error() string {
	return fmt.Sprintf("insufficient pixel data: need bit %d of %d samples", e.BitIndex, e.Samples)
}
