// Package store provides the key-value persistence behind the fusion cache.
//
// Records live in a single partition/sort-key table. Every record carries a
// type, an epoch-seconds expiry and an ISO-8601 creation timestamp, and is
// indexed by (type, createdAt) so that one record type can be listed newest
// first with an opaque resumption cursor.
//
// Two backends implement the same [Backend] contract: an in-memory map for
// tests and local runs, and Amazon DynamoDB. The backend is chosen once when
// the process starts and injected into [New]; nothing else in the module
// knows which one is active.
//
// Expiry is advisory. The store never deletes expired records on read; it is
// up to the reader to compare ExpiresAt with its clock (see package cache).
package store
