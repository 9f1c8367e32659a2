package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bgunnarsson/usuarios/internal/db"
	"github.com/bgunnarsson/usuarios/internal/print"
)

const maxColumnWidth = 40

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type model struct {
	title string
	count int
	table table.Model
}

func newModel(title string, rows *db.Rows) model {
	widths := make([]int, len(rows.Columns))
	for i, c := range rows.Columns {
		widths[i] = runewidth.StringWidth(c.Name)
	}

	data := make([]table.Row, 0, len(rows.Data))
	for _, r := range rows.Data {
		cells := make(table.Row, len(rows.Columns))
		for i := range cells {
			if i < len(r) {
				cells[i] = print.Cell(r[i])
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cells[i]))
		}
		data = append(data, cells)
	}

	cols := make([]table.Column, len(rows.Columns))
	for i, c := range rows.Columns {
		cols[i] = table.Column{Title: c.Name, Width: min(widths[i], maxColumnWidth)}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(data),
		table.WithFocused(true),
		table.WithHeight(min(max(len(data), 1), 20)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return model{
		title: title,
		count: len(data),
		table: t,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		// title, frame and help take six lines
		m.table.SetHeight(max(msg.Height-6, 1))
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	help := fmt.Sprintf("%d rows • ↑/↓ move • q quit", m.count)
	return titleStyle.Render(m.title) + "\n" +
		frameStyle.Render(m.table.View()) + "\n" +
		helpStyle.Render(help) + "\n"
}

// Run shows rows in a scrollable table until the user quits or ctx ends.
func Run(ctx context.Context, title string, rows *db.Rows) error {
	p := tea.NewProgram(newModel(title, rows), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
