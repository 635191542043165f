// Package connection is the minredis-cli client side of the wire protocol.
//
// A Client sends one command as an array of bulk strings and reads until a
// complete reply has been decoded. Unlike the server, the client keeps
// reading when a reply arrives split across several reads.
package connection
