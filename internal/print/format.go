package print

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bgunnarsson/usuarios/internal/db"
)

// Null is how a SQL NULL is shown everywhere.
const Null = "NULL"

// Cell renders a single scanned value for human output.
func Cell(v any) string {
	if v == nil {
		return Null
	}
	switch t := v.(type) {
	case []byte:
		// heuristic: treat as string if printable, else show len
		s := string(t)
		if isPrintable(s) {
			return s
		}
		return fmt.Sprintf("<blob %d bytes>", len(t))
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(t)
	}
}

// Tuple renders a row on one line, e.g. (1, 'Juan', 25). Text is quoted,
// numbers are bare, a one-value row keeps a trailing comma.
func Tuple(row db.Row) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = tupleValue(v)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func tupleValue(v any) string {
	switch t := v.(type) {
	case string:
		return quote(t)
	case []byte:
		if s := string(t); isPrintable(s) {
			return quote(s)
		}
		return fmt.Sprintf("<blob %d bytes>", len(t))
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	default:
		return Cell(v)
	}
}

// quote renders text on a single line. Single quotes are used unless the
// text holds a ' and no ", then double quotes. Control characters are escaped.
func quote(s string) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.WriteRune(q)
	for _, r := range s {
		switch {
		case r == q, r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20, r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(q)
	return b.String()
}

// Tuples writes one Tuple line per row.
func Tuples(w io.Writer, rows *db.Rows) error {
	for _, r := range rows.Data {
		if _, err := fmt.Fprintln(w, Tuple(r)); err != nil {
			return err
		}
	}
	return nil
}

func isPrintable(s string) bool {
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' {
			return false
		}
	}
	return true
}
