package stego

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/joemunene-by/Steganography-tool/internal/crypto"
	"github.com/joemunene-by/Steganography-tool/internal/imaging"
)

// EncodeOptions control a single encode operation.
type EncodeOptions struct {
	// Password, when non-empty, seals the payload in an encryption envelope
	// and prefixes the encrypted marker before framing.
	Password string

	// Compress, when true, zstd-compresses the message and prefixes the
	// compressed marker. Compression runs before encryption so the cipher
	// sees compressible input.
	Compress bool
}

// Encoder hides messages in carrier images.
type Encoder struct {
	// Output controls how encoded carriers are written: JPEG quality,
	// overwrite policy, and the fallback format for destinations without a
	// recognized extension. The zero value applies the imaging package
	// defaults.
	Output imaging.StoreOptions

	log *zap.Logger
}

// NewEncoder creates an encoder. A nil logger disables logging.
func NewEncoder(log *zap.Logger) *Encoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Encoder{log: log}
}

// Encode embeds message into the image at inputPath and writes the result to
// outputPath. The carrier file itself is never modified.
//
// The payload is prepared (compressed, then sealed, each stage adding its
// marker) before the capacity check, so the check covers exactly the bytes
// that will be framed.
func (e *Encoder) Encode(inputPath string, message []byte, outputPath string, opts EncodeOptions) error {
	if len(message) == 0 {
		return fmt.Errorf("message cannot be empty")
	}

	carrier, err := imaging.Load(inputPath)
	if err != nil {
		return err
	}

	payload, err := preparePayload(message, opts)
	if err != nil {
		return err
	}

	capacity, err := Capacity(carrier.SampleCount())
	if err != nil {
		return err
	}
	if len(payload) > capacity {
		return &CapacityExceededError{Needed: len(payload), Available: capacity}
	}

	encoded, err := Embed(carrier.Samples, payload)
	if err != nil {
		return err
	}
	carrier.Samples = encoded

	if err := imaging.Store(carrier, outputPath, e.Output); err != nil {
		return err
	}

	e.log.Debug("message encoded",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("payload_bytes", len(payload)),
		zap.Int("capacity_bytes", capacity),
		zap.Bool("encrypted", opts.Password != ""),
		zap.Bool("compressed", opts.Compress),
	)
	return nil
}

// CapacityOf returns the maximum payload size in bytes for the image at path.
func (e *Encoder) CapacityOf(path string) (int, error) {
	info, err := imaging.LoadInfo(path)
	if err != nil {
		return 0, err
	}
	return Capacity(info.SampleCount)
}

// preparePayload applies the optional compression and encryption stages,
// innermost first, and returns the bytes to frame.
func preparePayload(message []byte, opts EncodeOptions) ([]byte, error) {
	payload := message

	if opts.Compress {
		compressed := compressPayload(payload)
		payload = append([]byte(compressedMarker), compressed...)
	}

	if opts.Password != "" {
		env, err := crypto.NewEnvelope(opts.Password)
		if err != nil {
			return nil, err
		}
		sealed, err := env.Seal(payload)
		if err != nil {
			return nil, err
		}
		payload = append([]byte(encryptedMarker), sealed...)
	}

	return payload, nil
}

// unwrapPayload reverses preparePayload on an extracted frame payload.
func unwrapPayload(payload []byte, password string) ([]byte, error) {
	if bytes.HasPrefix(payload, []byte(encryptedMarker)) {
		if password == "" {
			return nil, &crypto.DecryptionFailedError{Reason: "message is encrypted but no password provided"}
		}
		env, err := crypto.NewEnvelope(password)
		if err != nil {
			return nil, err
		}
		payload, err = env.Open(payload[len(encryptedMarker):])
		if err != nil {
			return nil, err
		}
	}

	if bytes.HasPrefix(payload, []byte(compressedMarker)) {
		decompressed, err := decompressPayload(payload[len(compressedMarker):])
		if err != nil {
			return nil, err
		}
		payload = decompressed
	}

	return payload, nil
}
