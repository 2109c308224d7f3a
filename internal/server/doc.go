// Package server implements the JSON HTTP front end for the steganography
// tool.
//
// Every endpoint accepts a POST with a JSON body and returns either the
// operation's result or a uniform {"error": "..."} envelope. The server
// operates on file paths visible to the process; it does not accept image
// uploads.
//
// # Endpoints
//
//   - /api/capacity: maximum payload size of a carrier
//   - /api/encode: hide a message in a carrier
//   - /api/decode: recover a hidden message
//   - /api/check: probe for an embedded frame
//   - /api/analyze: full carrier analysis report
//   - /api/compare: original-vs-encoded impact report
//   - /api/batch: run many encode/decode operations concurrently
//
// # Status Codes
//
// 400 for malformed requests, 422 for well-formed requests that fail against
// the carrier or payload (unreadable image, capacity exceeded, decryption
// failure, no message), 500 for everything else.
//
// # Caching
//
// When cache_images is enabled, /api/check serves repeated probes of the
// same path from an in-memory carrier cache. The cache lives for the server
// process.
package server
