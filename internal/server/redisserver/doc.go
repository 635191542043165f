// Package redisserver serves the RESP command protocol over TCP.
//
// Each accepted connection runs in its own goroutine. A connection reads
// into a fixed-size buffer, decodes exactly one command from the bytes read,
// executes it and writes the reply before reading again. There is no
// pipelining: a command split across two reads, or two commands in one
// read, is not reassembled.
//
// Undecodable input closes the connection without a reply. Input that
// decodes to a null value is ignored. Everything else gets exactly one reply.
package redisserver
