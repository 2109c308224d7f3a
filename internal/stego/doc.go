// Package stego implements the least-significant-bit steganographic codec
// and the encode/decode pipelines built on it.
//
// # Wire Format
//
// A hidden message is framed as a 4-byte big-endian length header followed
// by the payload bytes. The frame is written bit by bit into the low bit of
// consecutive carrier samples: header byte 0 first, and within every byte
// the least significant bit first. A carrier therefore needs 32 samples for
// the header plus 8 samples per payload byte, which gives the capacity
// formula (samples - 32) / 8.
//
// # Payload Stages
//
// Before framing, the message optionally passes through two stages, each of
// which prefixes a fixed ASCII marker so the decoder can reverse them:
//
//	COMPRESSED: + zstd(message)        when compression is requested
//	ENCRYPTED:  + seal(inner payload)  when a password is supplied
//
// Compression runs first so encryption sees compressible input. A frame
// without markers carries the message verbatim.
//
// # Zero-Length Frames
//
// A header value of zero means "no message". Embed will produce such a frame
// for an empty payload, but Extract reports ErrNoMessage for it and Probe
// reports false; the Encoder pipeline rejects empty messages outright.
package stego
