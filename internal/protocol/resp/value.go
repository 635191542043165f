package resp

import (
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindSimpleString Kind = iota + 1
	KindError
	KindInteger
	KindBulkString
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "simple_string"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulkString:
		return "bulk_string"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a decoded RESP value.
//
// Str carries the payload of simple strings, errors and bulk strings, Int the
// payload of integers and Array the elements of an array. Payloads never
// include the CRLF terminator.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Array []Value
}

// NewSimpleString returns a simple string value.
func NewSimpleString(s string) Value { return Value{Kind: KindSimpleString, Str: s} }

// NewError returns an error value.
func NewError(s string) Value { return Value{Kind: KindError, Str: s} }

// NewInteger returns an integer value.
func NewInteger(n int64) Value { return Value{Kind: KindInteger, Int: n} }

// NewBulkString returns a bulk string value.
func NewBulkString(s string) Value { return Value{Kind: KindBulkString, Str: s} }

// NewArray returns an array value holding items.
func NewArray(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindArray, Array: items}
}

// NewCommand builds the array-of-bulk-strings form clients send.
func NewCommand(args ...string) Value {
	items := make([]Value, 0, len(args))
	for _, a := range args {
		items = append(items, NewBulkString(a))
	}
	return NewArray(items...)
}

// Equal reports whether v and o hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInteger:
		return v.Int == o.Int
	case KindArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	default:
		return v.Str == o.Str
	}
}

// Encode renders v in wire form.
func (v Value) Encode() string {
	var b strings.Builder
	v.encodeTo(&b)
	return b.String()
}

func (v Value) encodeTo(b *strings.Builder) {
	switch v.Kind {
	case KindSimpleString:
		b.WriteString(SimpleString(v.Str))
	case KindError:
		b.WriteString(Error(v.Str))
	case KindInteger:
		b.WriteString(Integer(v.Int))
	case KindBulkString:
		b.WriteString(BulkString(v.Str))
	case KindArray:
		b.WriteString(ArrayHeader(len(v.Array)))
		for _, item := range v.Array {
			item.encodeTo(b)
		}
	}
}

// String returns a short human readable form, used in logs.
func (v Value) String() string {
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindArray:
		parts := make([]string, 0, len(v.Array))
		for _, item := range v.Array {
			parts = append(parts, item.String())
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return v.Str
	}
}
