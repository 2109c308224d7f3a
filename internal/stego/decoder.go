package stego

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/joemunene-by/Steganography-tool/internal/imaging"
)

// DecodeOptions control a single decode operation.
type DecodeOptions struct {
	// Password decrypts an encrypted payload. Required when the carrier was
	// encoded with one; ignored otherwise.
	Password string
}

// Decoder recovers messages hidden in carrier images.
type Decoder struct {
	log *zap.Logger
}

// NewDecoder creates a decoder. A nil logger disables logging.
func NewDecoder(log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decoder{log: log}
}

// Decode extracts the hidden message from the image at path and returns it
// as raw bytes, undoing the encryption and compression stages the encoder
// applied.
func (d *Decoder) Decode(path string, opts DecodeOptions) ([]byte, error) {
	carrier, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}

	payload, err := Extract(carrier.Samples)
	if err != nil {
		return nil, err
	}

	message, err := unwrapPayload(payload, opts.Password)
	if err != nil {
		return nil, err
	}

	d.log.Debug("message decoded",
		zap.String("input", path),
		zap.Int("message_bytes", len(message)),
	)
	return message, nil
}

// DecodeString decodes and returns the message as a UTF-8 string, failing if
// the recovered bytes are not valid UTF-8.
func (d *Decoder) DecodeString(path string, opts DecodeOptions) (string, error) {
	message, err := d.Decode(path, opts)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(message) {
		return "", fmt.Errorf("failed to decode message as UTF-8")
	}
	return string(message), nil
}

// HasMessage reports whether the image at path plausibly contains a hidden
// message. It never returns an error: unreadable images and malformed frames
// both read as false. Like Probe, this is a heuristic, not a guarantee.
func (d *Decoder) HasMessage(path string) bool {
	carrier, err := imaging.Load(path)
	if err != nil {
		return false
	}
	return Probe(carrier.Samples)
}
