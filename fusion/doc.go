// Package fusion composes catalog and weather data into cached, fused
// results.
//
// An Orchestrator answers GetFusedData by consulting the cache layer first
// and, on a miss, fetching the character, its homeworld and the weather at
// the homeworld's stand-in location. Homeworld and weather failures degrade
// the result (the section is omitted) instead of failing the call.
//
// Listing requests fetch one page of characters, resolve homeworld names
// concurrently and attach a single representative weather reading.
//
// The orchestrator also stores free-form custom documents and exposes the
// history log written by the cache layer.
package fusion
