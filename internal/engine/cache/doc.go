// Package cache remembers which attributes a selection strategy kept for a given
// dataset, so re-running a batch over unchanged inputs can skip the evaluation.
//
// Entries are JSON files keyed by a SHA256 over the input file's bytes and the
// reducer fingerprint. Key features:
//   - File-based storage in ~/.arffkit/cache/ (overridable via ARFFKIT_CACHE_DIR)
//   - Configurable TTL (default 7 days) via config file or environment variable
//   - Atomic writes (temp file + rename) and cleanup of expired entries
//
// A changed input file or a changed strategy parameter produces a different key, so
// stale selections are never replayed.
package cache
