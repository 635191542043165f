// Package resp implements the RESP subset spoken by minredis.
//
// Supported value types:
//   - Simple strings ("+OK\r\n")
//   - Errors ("-Invalid Command\r\n")
//   - Integers (":42\r\n", an explicit "+" sign is accepted)
//   - Bulk strings ("$5\r\nhello\r\n", "$-1\r\n" is the null bulk string)
//   - Arrays ("*2\r\n...", "*-1\r\n" is the null array), nested to any depth
//
// Decoding is one-shot: Decode must be handed a buffer that already holds a
// complete value. Truncated input is reported as ErrTruncated, which wraps
// ErrInvalidCommand, rather than as a request for more bytes.
package resp
