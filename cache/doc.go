// Package cache is the TTL cache and history log in front of package store.
//
// A cache entry is a CACHE record at (key, "DATA") holding the payload and
// an epoch-seconds expiry. Readers treat entries whose expiry has passed as
// misses; nothing is ever deleted. Every write under an entity key (one that
// names a single identified resource, such as CHARACTER#1) also appends a
// HISTORY record so recent fusions can be listed newest first.
//
// History writes are best-effort: a failure is logged and the cache write
// still succeeds.
package cache
