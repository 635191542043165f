// Package storage ties the in-memory store to its snapshot directory.
//
// The Engine owns the single shared memory.Store served to every
// connection, and saves or loads it as named snapshot files. Persistence is
// explicit: nothing is written unless Save is called (by the SAVE command or
// on shutdown), and there is no append-only log to replay.
package storage
