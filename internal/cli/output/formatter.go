package output

import (
	"fmt"
	"io"

	"github.com/Pessina/minredis/internal/protocol/resp"
)

// Format represents the output format.
type Format string

const (
	FormatRaw  Format = "raw"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatRaw, "":
		return &RawFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want raw, json or yaml)", format)
	}
}

// ErrorReply is the structured form of an error reply.
type ErrorReply struct {
	Error string `json:"error" yaml:"error"`
}

// FromValue converts a reply into plain Go data: strings, int64, []any,
// ErrorReply, or nil for a null reply.
func FromValue(v *resp.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case resp.KindSimpleString, resp.KindBulkString:
		return v.Str
	case resp.KindError:
		return ErrorReply{Error: v.Str}
	case resp.KindInteger:
		return v.Int
	case resp.KindArray:
		items := make([]any, len(v.Array))
		for i := range v.Array {
			items[i] = FromValue(&v.Array[i])
		}
		return items
	default:
		return nil
	}
}

// normalize turns replies into plain data and leaves anything else alone.
func normalize(data any) any {
	switch d := data.(type) {
	case *resp.Value:
		return FromValue(d)
	case resp.Value:
		return FromValue(&d)
	default:
		return data
	}
}
