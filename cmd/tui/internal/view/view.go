package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

func (c *CommonModel) setSize(msg tea.WindowSizeMsg) {
	c.Width = msg.Width
	c.Height = msg.Height
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// OpenBillMsg asks the root model to open a bill in the editor. A zero ID
// creates a new bill.
type OpenBillMsg struct {
	ID int64
}

func OpenBill(id int64) tea.Cmd {
	return func() tea.Msg {
		return OpenBillMsg{ID: id}
	}
}
