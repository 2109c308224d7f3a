// Package imaging is the boundary between image files and the steganography
// codec.
//
// It decodes a carrier file into a flat, row-major sequence of 8-bit samples
// (one per color channel per pixel) and re-encodes a same-shaped sequence
// back to a file. Every loaded image is normalized to 3-channel RGB first,
// so the rest of the system never sees alpha, palettes, or grayscale.
//
// # Sample Ordering
//
// Samples are flattened row by row, top to bottom; within a row, pixel by
// pixel left to right; within a pixel, R then G then B. The codec depends on
// this ordering being stable between Load and Store.
//
// # Thread Safety
//
// CarrierCache is safe for concurrent use. Load, Store, and LoadInfo are
// stateless and may be called concurrently.
//
// # Supported Formats
//
// PNG, JPEG, BMP, and TIFF, selected by file extension; Store falls back to
// a configured default format for paths without a recognized one. PNG, BMP,
// and TIFF
// are lossless and round-trip sample buffers exactly. JPEG re-quantizes
// pixel data on save and will destroy an embedded payload; it is accepted
// only so the tool can read and convert existing files.
package imaging
