// Package memory provides the in-memory keyed store behind minredis.
//
// The store maps each key to exactly one Cell (a string value plus an
// optional absolute expiry) and guards the whole map with a single mutex.
// Every operation holds the lock only for its own duration.
//
// Expiration is lazy: an expired cell stays in the map until an operation
// that reads it (Get, SetList, Update) notices and removes it. Sweep removes
// every expired cell at once and is only used before taking snapshots.
package memory
