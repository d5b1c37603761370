// Package httputil provides HTTP helpers shared by the package index client.
//
// It contains two small building blocks:
//
//   - [Cache]: file-based caching of JSON-marshalable values with a TTL,
//     keyed by SHA-256 hashes so arbitrary strings are safe cache keys.
//   - [Retry]: retry with exponential backoff for transient failures
//     wrapped in [RetryableError].
//
// Both are deliberately free of pipit-specific types so they can be tested
// in isolation and reused by any client that talks to a registry.
package httputil
