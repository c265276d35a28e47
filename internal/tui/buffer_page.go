// Copyright (c) 2025 Neomantra Corp

package tui

import (
	"fmt"
	"os"

	"github.com/76creates/stickers/flexbox"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flatgo-project/flatgo"
)

// BufferPageModel shows a decoded table's fields as a two-column
// flexbox grid: field name against its native value.
type BufferPageModel struct {
	reg        *fbs.Registry
	typeName   string
	bufferPath string

	fields    []string
	values    []string
	lastError error

	width  int
	height int
}

func NewBufferPage(reg *fbs.Registry, typeName, bufferPath string) BufferPageModel {
	m := BufferPageModel{reg: reg, typeName: typeName, bufferPath: bufferPath, width: 40, height: 10}
	m.reload()
	return m
}

func (m *BufferPageModel) reload() {
	m.fields = nil
	m.values = nil
	m.lastError = nil
	if m.bufferPath == "" {
		return
	}

	buf, err := os.ReadFile(m.bufferPath)
	if err != nil {
		m.lastError = err
		return
	}
	root, err := fbs.DecodeRoot(buf, m.reg, m.typeName)
	if err != nil {
		m.lastError = err
		return
	}
	om, err := fbs.ToNative(root)
	if err != nil {
		m.lastError = err
		return
	}
	for _, k := range om.Keys() {
		v, _ := om.Get(k)
		m.fields = append(m.fields, k)
		m.values = append(m.values, fmt.Sprintf("%v", v))
	}
}

func (m BufferPageModel) Init() tea.Cmd { return nil }

func (m BufferPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m BufferPageModel) View() string {
	if m.lastError != nil {
		return flatgoBorderStyle.Render("error: " + m.lastError.Error())
	}
	if m.bufferPath == "" {
		return flatgoBorderStyle.Render("no buffer loaded")
	}

	fb := flexbox.New(maxInt(20, m.width-4), maxInt(5, m.height-6))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorGrue)

	headerRow := fb.NewRow()
	headerRow.AddCells(
		flexbox.NewCell(1, 1).SetStyle(headerStyle).SetContent("Field"),
		flexbox.NewCell(2, 1).SetStyle(headerStyle).SetContent("Value"),
	)
	rows := []*flexbox.Row{headerRow}
	for i, name := range m.fields {
		row := fb.NewRow()
		row.AddCells(
			flexbox.NewCell(1, 1).SetContent(name),
			flexbox.NewCell(2, 1).SetContent(m.values[i]),
		)
		rows = append(rows, row)
	}
	fb.AddRows(rows)
	return flatgoBorderStyle.Render(fb.Render())
}
