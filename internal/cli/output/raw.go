package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Pessina/minredis/internal/protocol/resp"
)

// RawFormatter prints replies the way redis-cli does.
type RawFormatter struct{}

// Format writes data followed by a newline.
func (f *RawFormatter) Format(w io.Writer, data any) error {
	switch d := data.(type) {
	case *resp.Value:
		_, err := io.WriteString(w, raw(d, "")+"\n")
		return err
	case resp.Value:
		_, err := io.WriteString(w, raw(&d, "")+"\n")
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, d.String())
		return err
	default:
		_, err := fmt.Fprintln(w, d)
		return err
	}
}

func raw(v *resp.Value, indent string) string {
	if v == nil {
		return "(nil)"
	}
	switch v.Kind {
	case resp.KindSimpleString:
		return v.Str
	case resp.KindBulkString:
		return strconv.Quote(v.Str)
	case resp.KindError:
		return "(error) " + v.Str
	case resp.KindInteger:
		return "(integer) " + strconv.FormatInt(v.Int, 10)
	case resp.KindArray:
		if len(v.Array) == 0 {
			return "(empty array)"
		}
		width := len(strconv.Itoa(len(v.Array)))
		pad := indent + strings.Repeat(" ", width+2)

		lines := make([]string, len(v.Array))
		for i := range v.Array {
			prefix := fmt.Sprintf("%*d) ", width, i+1)
			if i > 0 {
				prefix = indent + prefix
			}
			lines[i] = prefix + raw(&v.Array[i], pad)
		}
		return strings.Join(lines, "\n")
	default:
		return "(unknown)"
	}
}
