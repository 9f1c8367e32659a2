package print

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/bgunnarsson/usuarios/internal/db"
)

type Options struct {
	MaxWidth int // max width for each column, 0 = 40
}

// RenderTable writes rows as a boxed ASCII table. Widths are measured in
// terminal cells so accented names line up.
func RenderTable(w io.Writer, rows *db.Rows, opts Options) {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 40
	}

	cols := len(rows.Columns)
	if cols == 0 {
		fmt.Fprintln(w, "(no columns)")
		return
	}

	widths := make([]int, cols)
	for i, col := range rows.Columns {
		widths[i] = min(runewidth.StringWidth(col.Name), opts.MaxWidth)
	}

	cells := make([][]string, len(rows.Data))
	for r, row := range rows.Data {
		cells[r] = make([]string, cols)
		for i := 0; i < cols && i < len(row); i++ {
			s := Cell(row[i])
			cells[r][i] = s
			if l := min(runewidth.StringWidth(s), opts.MaxWidth); l > widths[i] {
				widths[i] = l
			}
		}
	}

	sep := func(ch string) string {
		var b strings.Builder
		b.WriteString("+")
		for i := range widths {
			b.WriteString(strings.Repeat(ch, widths[i]+2))
			b.WriteString("+")
		}
		return b.String()
	}

	writeRow := func(cells []string) {
		var b strings.Builder
		b.WriteString("|")
		for i, c := range cells {
			cut := runewidth.Truncate(c, widths[i], "...")
			b.WriteString(" ")
			b.WriteString(runewidth.FillRight(cut, widths[i]))
			b.WriteString(" |")
		}
		fmt.Fprintln(w, b.String())
	}

	header := make([]string, cols)
	for i, col := range rows.Columns {
		header[i] = col.Name
	}

	fmt.Fprintln(w, sep("-"))
	writeRow(header)
	fmt.Fprintln(w, sep("="))
	for _, r := range cells {
		writeRow(r)
	}
	fmt.Fprintln(w, sep("-"))
}
