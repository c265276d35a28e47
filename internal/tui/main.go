// Copyright (c) 2025 Neomantra Corp

// Package tui is a local file browser for a FlatBuffers schema and a
// decoded buffer: an AppModel switching between numbered tab pages.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flatgo-project/flatgo"
	"github.com/flatgo-project/flatgo/internal/cliutil"
)

// Config is the one-time setup collected before the program starts:
// which schema to load, which root type to decode, and (optionally)
// which buffer file to open immediately.
type Config struct {
	SchemaPath string
	TypeName   string
	BufferPath string
}

// Run loads the schema and launches the bubbletea program.
func Run(config Config) error {
	reg, err := loadRegistry(config.SchemaPath)
	if err != nil {
		return err
	}
	model := NewAppModel(config, reg)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type AppModel struct {
	config Config

	pages       []tea.Model
	pageNames   []string
	currentPage int

	width       int
	height      int
	help        help.Model
	keyMap      AppKeyMap
	headerStyle lipgloss.Style
}

func NewAppModel(config Config, reg *fbs.Registry) AppModel {
	m := AppModel{
		config:      config,
		currentPage: 0,
		pageNames:   []string{"1-Types", "2-Buffer"},
		pages: []tea.Model{
			NewTypesPage(reg),
			NewBufferPage(reg, config.TypeName, config.BufferPath),
		},
		width:  20,
		height: 10,
		help:   help.New(),
		keyMap: DefaultAppKeyMap(),
		headerStyle: lipgloss.NewStyle().
			Foreground(colorYellow).
			Background(colorDarkPurple),
	}
	return m
}

type AppKeyMap struct {
	Quit        key.Binding
	FocusTypes  key.Binding
	FocusBuffer key.Binding
}

func DefaultAppKeyMap() AppKeyMap {
	return AppKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		FocusTypes: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "types"),
		),
		FocusBuffer: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "buffer"),
		),
	}
}

func (m *AppKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.Quit, m.FocusTypes, m.FocusBuffer}}
}

func (m AppKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Quit, m.FocusTypes, m.FocusBuffer}
}

func (m AppModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, page := range m.pages {
		cmds = append(cmds, page.Init())
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keyMap.FocusTypes):
			m.currentPage = 0
		case key.Matches(msg, m.keyMap.FocusBuffer):
			m.currentPage = 1
		}
		pageModel, cmd := m.pages[m.currentPage].Update(msg)
		m.pages[m.currentPage] = pageModel
		return m, cmd
	}

	var cmds []tea.Cmd
	for i := range m.pages {
		pageModel, cmd := m.pages[i].Update(msg)
		m.pages[i] = pageModel
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m AppModel) View() string {
	out := m.headerView() + "\n"
	if m.currentPage < 0 || m.currentPage >= len(m.pages) {
		out += "Error: bad page\n"
	} else {
		out += m.pages[m.currentPage].View() + "\n"
	}
	out += m.help.View(&m.keyMap)
	return out
}

func (m *AppModel) headerView() string {
	header := m.headerStyle.Render(" flatgo-tui   ")
	for i, name := range m.pageNames {
		if i == m.currentPage {
			header += lipgloss.NewStyle().Foreground(colorYellow).Background(colorGrue).Render("[ " + name + " ]")
		} else {
			header += m.headerStyle.Render("| " + name + " |")
		}
		header += m.headerStyle.Render(" ")
	}
	rest := maxInt(0, m.width-lipgloss.Width(header))
	header += m.headerStyle.Render(strings.Repeat(" ", rest))
	return header
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func loadRegistry(schemaPath string) (*fbs.Registry, error) {
	return cliutil.LoadRegistry(schemaPath)
}
