package stego

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Payload markers. Each is a fixed ASCII protocol constant prefixed to the
// frame payload before length computation; encode and decode must agree on
// the exact byte values.
const (
	encryptedMarker  = "ENCRYPTED:"
	compressedMarker = "COMPRESSED:"
)

// Shared zstd codec state. EncodeAll/DecodeAll on these are safe for
// concurrent use.
var (
	zenc = mustNewZstdEncoder()
	zdec = mustNewZstdDecoder()
)

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

func compressPayload(data []byte) []byte {
	return zenc.EncodeAll(data, make([]byte, 0, len(data)/2+64))
}

func decompressPayload(data []byte) ([]byte, error) {
	out, err := zdec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}
