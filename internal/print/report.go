package print

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/bgunnarsson/usuarios/internal/db"
	"github.com/bgunnarsson/usuarios/internal/usuarios"
)

func group(s sql.NullString) string {
	if !s.Valid {
		return Null
	}
	return s.String
}

func average(f sql.NullFloat64) string {
	if !f.Valid {
		return Null
	}
	return strconv.FormatFloat(f.Float64, 'f', 2, 64)
}

// CountLine is "Género: M, Cantidad: 3".
func CountLine(g usuarios.GroupCount) string {
	return fmt.Sprintf("Género: %s, Cantidad: %d", group(g.Sex), g.Count)
}

// AverageLine is "Género: M, Promedio de Edad: 25.00 años".
func AverageLine(g usuarios.GroupAverage) string {
	return fmt.Sprintf("Género: %s, Promedio de Edad: %s años", group(g.Sex), average(g.Avg))
}

func Counts(w io.Writer, groups []usuarios.GroupCount) error {
	for _, g := range groups {
		if _, err := fmt.Fprintln(w, CountLine(g)); err != nil {
			return err
		}
	}
	return nil
}

func Averages(w io.Writer, groups []usuarios.GroupAverage) error {
	for _, g := range groups {
		if _, err := fmt.Fprintln(w, AverageLine(g)); err != nil {
			return err
		}
	}
	return nil
}

// CountRows shapes the count report for RenderTable and the TUI.
func CountRows(groups []usuarios.GroupCount) *db.Rows {
	out := &db.Rows{
		Columns: []db.Column{
			{Name: "Género", Type: "TEXT"},
			{Name: "Cantidad", Type: "INTEGER"},
		},
	}
	for _, g := range groups {
		out.Data = append(out.Data, db.Row{group(g.Sex), g.Count})
	}
	return out
}

// AverageRows shapes the age report for RenderTable and the TUI.
func AverageRows(groups []usuarios.GroupAverage) *db.Rows {
	out := &db.Rows{
		Columns: []db.Column{
			{Name: "Género", Type: "TEXT"},
			{Name: "Promedio de Edad", Type: "REAL"},
		},
	}
	for _, g := range groups {
		out.Data = append(out.Data, db.Row{group(g.Sex), average(g.Avg)})
	}
	return out
}
