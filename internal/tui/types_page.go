// Copyright (c) 2025 Neomantra Corp

package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/flatgo-project/flatgo"
)

// TypesPageModel lists every declared type in the loaded schema.
type TypesPageModel struct {
	reg   *fbs.Registry
	table table.Model

	width  int
	height int
}

func NewTypesPage(reg *fbs.Registry) TypesPageModel {
	t := table.New(table.WithColumns([]table.Column{
		{Title: "Type", Width: 24},
		{Title: "Kind", Width: 10},
		{Title: "Namespace", Width: 20},
	}), table.WithStyles(flatgoTableStyles), table.WithFocused(true))

	var rows []table.Row
	schema := reg.Schema()
	for _, e := range schema.Enums {
		rows = append(rows, table.Row{e.Name, "enum", e.Namespace})
	}
	for _, u := range schema.Unions {
		rows = append(rows, table.Row{u.Name, "union", u.Namespace})
	}
	for _, s := range schema.Structs {
		rows = append(rows, table.Row{s.Name, "struct", s.Namespace})
	}
	for _, tbl := range schema.Tables {
		rows = append(rows, table.Row{tbl.Name, "table", tbl.Namespace})
	}
	t.SetRows(rows)

	return TypesPageModel{reg: reg, table: t, width: 20, height: 10}
}

func (m TypesPageModel) Init() tea.Cmd { return nil }

func (m TypesPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(maxInt(3, msg.Height-6))
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m TypesPageModel) View() string {
	return flatgoBorderStyle.Render(m.table.View())
}
