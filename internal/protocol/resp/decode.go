package resp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidCommand is returned for any input the decoder cannot accept.
	ErrInvalidCommand = errors.New("resp: invalid command")

	// ErrTruncated is returned when the input ends before a value is complete.
	ErrTruncated = fmt.Errorf("%w: truncated input", ErrInvalidCommand)
)

// maxPrealloc bounds the capacity reserved up front for an array so that a
// hostile count cannot force a large allocation before any element arrives.
const maxPrealloc = 64

// Decode decodes one value from the front of *cursor and advances the cursor
// past the consumed bytes, leaving anything that follows untouched.
//
// A nil value with a nil error means a null bulk string or a null array was
// consumed. On error the cursor content is unspecified and must not be reused.
func Decode(cursor *string) (*Value, error) {
	in := *cursor
	if in == "" {
		return nil, ErrTruncated
	}

	switch in[0] {
	case '$':
		return decodeBulkString(cursor)
	case '*':
		return decodeArray(cursor)
	case '+', '-', ':':
		return decodeFlat(cursor)
	default:
		return nil, fmt.Errorf("%w: unexpected type byte %q", ErrInvalidCommand, in[0])
	}
}

// DecodeAll decodes every value in buf. Null values are skipped.
func DecodeAll(buf string) ([]Value, error) {
	var out []Value
	for buf != "" {
		v, err := Decode(&buf)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

// header splits "<prefix><field>\r\n<rest>" into field and rest.
func header(in string) (field, rest string, err error) {
	pos := strings.Index(in, crlf)
	if pos < 0 {
		return "", "", ErrTruncated
	}
	return in[1:pos], in[pos+len(crlf):], nil
}

func decodeFlat(cursor *string) (*Value, error) {
	in := *cursor
	payload, rest, err := header(in)
	if err != nil {
		return nil, err
	}

	var v Value
	switch in[0] {
	case '+':
		v = NewSimpleString(payload)
	case '-':
		v = NewError(payload)
	case ':':
		n, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid integer %q", ErrInvalidCommand, payload)
		}
		v = NewInteger(n)
	}

	*cursor = rest
	return &v, nil
}

func decodeBulkString(cursor *string) (*Value, error) {
	field, rest, err := header(*cursor)
	if err != nil {
		return nil, err
	}

	n, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		// "$-1" and any other non-length field read as the null bulk string.
		*cursor = rest
		return nil, nil
	}

	avail := uint64(len(rest))
	if n > avail || avail-n < uint64(len(crlf)) {
		return nil, ErrTruncated
	}
	end := int(n)
	if rest[end:end+len(crlf)] != crlf {
		return nil, fmt.Errorf("%w: missing bulk string terminator", ErrInvalidCommand)
	}

	v := NewBulkString(rest[:end])
	*cursor = rest[end+len(crlf):]
	return &v, nil
}

func decodeArray(cursor *string) (*Value, error) {
	field, rest, err := header(*cursor)
	if err != nil {
		return nil, err
	}

	*cursor = rest
	count, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		// "*-1" and any other non-count field read as the null array.
		return nil, nil
	}

	items := make([]Value, 0, min(count, maxPrealloc))
	for i := uint64(0); i < count; i++ {
		item, err := Decode(cursor)
		if err != nil {
			return nil, fmt.Errorf("array element %d of %d: %w", i, count, err)
		}
		if item != nil {
			items = append(items, *item)
		}
	}

	v := NewArray(items...)
	return &v, nil
}
