package resp

import (
	"strconv"
	"strings"
)

const crlf = "\r\n"

// SimpleString encodes s as "+s\r\n".
func SimpleString(s string) string {
	return "+" + s + crlf
}

// Error encodes s as "-s\r\n".
func Error(s string) string {
	return "-" + s + crlf
}

// Integer encodes n as ":n\r\n".
func Integer(n int64) string {
	return ":" + strconv.FormatInt(n, 10) + crlf
}

// BulkString encodes s with its byte length prefix.
func BulkString(s string) string {
	return "$" + strconv.Itoa(len(s)) + crlf + s + crlf
}

// NullBulk is the null bulk string.
func NullBulk() string {
	return "$-1" + crlf
}

// NullArray is the null array.
func NullArray() string {
	return "*-1" + crlf
}

// ArrayHeader encodes the "*<n>\r\n" prefix of an n element array.
func ArrayHeader(n int) string {
	return "*" + strconv.Itoa(n) + crlf
}

// Array joins already encoded elements under an array header.
func Array(encoded ...string) string {
	var b strings.Builder
	b.WriteString(ArrayHeader(len(encoded)))
	for _, e := range encoded {
		b.WriteString(e)
	}
	return b.String()
}

// Command encodes args as an array of bulk strings.
func Command(args ...string) string {
	encoded := make([]string, 0, len(args))
	for _, a := range args {
		encoded = append(encoded, BulkString(a))
	}
	return Array(encoded...)
}
