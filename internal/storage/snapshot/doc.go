// Package snapshot writes and reads named point-in-time copies of the store.
//
// File layout (<dir>/<name>.snap):
//
//	magic "MRSNAP01"
//	uint32 BE header length | JSON header
//	uint32 BE data length   | JSON records (optionally sealed)
//	SHA-256 over all preceding bytes
//
// Each record is {"key": ..., "value": ..., "expiry": <epoch seconds>}, with
// expiry omitted for keys that never expire. Files are written to a temp file
// and renamed into place, so a reader never observes a partial snapshot.
package snapshot
