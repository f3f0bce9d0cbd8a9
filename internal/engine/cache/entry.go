package cache

import (
	"time"
)

// Entry is one cached selection result.
type Entry struct {
	// Key is the SHA256 content key (see Key).
	Key string `json:"key"`

	// Fingerprint is the reducer configuration that produced the selection.
	Fingerprint string `json:"fingerprint"`

	// Source is the input file name, for humans browsing the cache directory.
	Source string `json:"source"`

	// Attributes are the kept attribute names, in output order.
	Attributes []string `json:"attributes"`

	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	TTLSeconds int       `json:"ttl_seconds"`
}

// NewEntry creates an entry that expires ttlSeconds from now.
func NewEntry(key, fingerprint, source string, attributes []string, ttlSeconds int) *Entry {
	now := time.Now().UTC()
	return &Entry{
		Key:         key,
		Fingerprint: fingerprint,
		Source:      source,
		Attributes:  append([]string(nil), attributes...),
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(ttlSeconds) * time.Second),
		TTLSeconds:  ttlSeconds,
	}
}

// IsExpired reports whether the entry is past its expiration time.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Age returns the time since the entry was created.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}
