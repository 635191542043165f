package resp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
		rest  string
	}{
		{name: "simple string", input: "+OK\r\n", want: NewSimpleString("OK")},
		{name: "simple string leaves rest", input: "+OK\r\n:5\r\n", want: NewSimpleString("OK"), rest: ":5\r\n"},
		{name: "error", input: "-Error message\r\n", want: NewError("Error message")},
		{name: "integer", input: ":1000\r\n", want: NewInteger(1000)},
		{name: "integer explicit plus", input: ":+64\r\n", want: NewInteger(64)},
		{name: "integer negative", input: ":-64\r\n", want: NewInteger(-64)},
		{name: "integer zero", input: ":0\r\n", want: NewInteger(0)},
		{name: "bulk string", input: "$4\r\nping\r\n", want: NewBulkString("ping")},
		{name: "empty bulk string", input: "$0\r\n\r\n", want: NewBulkString("")},
		{name: "bulk string leaves rest", input: "$6\r\nfoobar\r\n+OK\r\n", want: NewBulkString("foobar"), rest: "+OK\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := tt.input
			got, err := Decode(&cursor)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %#v, want %#v", *got, tt.want)
			assert.Equal(t, tt.rest, cursor)
		})
	}
}

func TestDecode_BulkStringWithEmbeddedCRLF(t *testing.T) {
	payload := "lskdfjkldsjf\n\r\n skjdhfjkdshf "
	cursor := fmt.Sprintf("$%d\r\n%s\r\n", len(payload), payload)

	got, err := Decode(&cursor)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, payload, got.Str)
	assert.Empty(t, cursor)
}

func TestDecode_NullMarkers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		rest  string
	}{
		{name: "null bulk string", input: "$-1\r\n"},
		{name: "null array", input: "*-1\r\n"},
		{name: "non numeric bulk length", input: "$abc\r\n+OK\r\n", rest: "+OK\r\n"},
		{name: "non numeric array count", input: "*x\r\n:1\r\n", rest: ":1\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := tt.input
			got, err := Decode(&cursor)
			require.NoError(t, err)
			assert.Nil(t, got)
			assert.Equal(t, tt.rest, cursor)
		})
	}
}

func TestDecode_EmptyArrayIsNotNull(t *testing.T) {
	cursor := "*0\r\n"
	got, err := Decode(&cursor)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, KindArray, got.Kind)
	assert.Empty(t, got.Array)
}

func TestDecode_Arrays(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{
			name:  "mixed scalars",
			input: "*2\r\n+OK\r\n:1000\r\n",
			want:  NewArray(NewSimpleString("OK"), NewInteger(1000)),
		},
		{
			name:  "command",
			input: "*3\r\n$3\r\nSET\r\n$4\r\nName\r\n$6\r\nFelipe\r\n",
			want:  NewCommand("SET", "Name", "Felipe"),
		},
		{
			name:  "nested",
			input: "*2\r\n*2\r\n$1\r\na\r\n*1\r\n:3\r\n-err\r\n",
			want: NewArray(
				NewArray(NewBulkString("a"), NewArray(NewInteger(3))),
				NewError("err"),
			),
		},
		{
			name:  "null element skipped",
			input: "*3\r\n$1\r\na\r\n$-1\r\n$1\r\nb\r\n",
			want:  NewArray(NewBulkString("a"), NewBulkString("b")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := tt.input
			got, err := Decode(&cursor)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s, want %s", got, tt.want)
			assert.Empty(t, cursor)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		truncated bool
	}{
		{name: "empty input", input: "", truncated: true},
		{name: "unknown type byte", input: "?x\r\n"},
		{name: "inline text", input: "PING\r\n"},
		{name: "simple string without terminator", input: "+OK", truncated: true},
		{name: "invalid integer", input: ":abc\r\n"},
		{name: "integer overflow", input: ":99999999999999999999\r\n"},
		{name: "bulk string body truncated", input: "$10\r\nabc\r\n", truncated: true},
		{name: "bulk string without trailing terminator", input: "$3\r\nabc", truncated: true},
		{name: "bulk string wrong terminator", input: "$3\r\nabcde\r\n"},
		{name: "array missing elements", input: "*3\r\n$1\r\na\r\n", truncated: true},
		{name: "array header without terminator", input: "*2", truncated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := tt.input
			got, err := Decode(&cursor)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrInvalidCommand)
			if tt.truncated {
				assert.ErrorIs(t, err, ErrTruncated)
			}
		})
	}
}

func TestDecodeAll(t *testing.T) {
	values, err := DecodeAll("+OK\r\n$-1\r\n:5\r\n*1\r\n$2\r\nhi\r\n")
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.True(t, NewSimpleString("OK").Equal(values[0]))
	assert.True(t, NewInteger(5).Equal(values[1]))
	assert.True(t, NewArray(NewBulkString("hi")).Equal(values[2]))

	_, err = DecodeAll("+OK\r\n$5\r\nab")
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecode_RoundTrip(t *testing.T) {
	values := []Value{
		NewSimpleString("PONG"),
		NewSimpleString(""),
		NewError("Invalid Command"),
		NewInteger(-9223372036854775808),
		NewInteger(9223372036854775807),
		NewBulkString("hello world"),
		NewBulkString(""),
		NewBulkString("with\r\nterminator inside"),
		NewArray(),
		NewCommand("LPUSH", "list", "Marcos", "Carlos"),
		NewArray(NewArray(NewArray(NewInteger(1))), NewBulkString("x"), NewError("e")),
	}

	const trailer = ":42\r\n"
	for _, v := range values {
		t.Run(v.Kind.String()+"/"+v.String(), func(t *testing.T) {
			cursor := v.Encode() + trailer
			got, err := Decode(&cursor)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, v.Equal(*got), "got %#v, want %#v", *got, v)
			assert.Equal(t, trailer, cursor)
		})
	}
}
