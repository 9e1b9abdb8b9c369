package view

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tillpad/internal/config"
	"github.com/MrJamesThe3rd/tillpad/internal/search"
)

// QuickAdder adds a product straight to a bill without opening it.
type QuickAdder interface {
	QuickAdd(ctx context.Context, billID *int64, productID int64, qty int) (int64, error)
}

// QuickAddModel is the landing search: picking a product adds it to the
// current bill, starting one when there is none.
type QuickAddModel struct {
	CommonModel
	adder  QuickAdder
	search SearchBox

	billID *int64
	busy   bool
	status string
	err    error
}

func NewQuickAddModel(src search.Source, adder QuickAdder, cfg *config.Config, billID *int64) QuickAddModel {
	box := NewSearchBox(src, cfg.Search.MinQueryLength, cfg.Search.Limit, cfg.Search.Debounce, cfg.Bill.CurrencySymbol)
	box.Focus()

	return QuickAddModel{
		adder:  adder,
		search: box,
		billID: billID,
	}
}

func (m QuickAddModel) Title() string { return "Search Products" }

func (m QuickAddModel) ShortHelp() string {
	return "Type to search | ↑/↓: choose | Enter: add to bill | ctrl+o: open bill | ctrl+n: new bill | Esc: back"
}

// BillID is the bill products are currently added to.
func (m QuickAddModel) BillID() *int64 {
	return m.billID
}

func (m QuickAddModel) Init() tea.Cmd {
	return textinput.Blink
}

type quickAddMsg struct {
	billID int64
	name   string
	err    error
}

func (m QuickAddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg)
		return m, nil

	case quickAddMsg:
		m.busy = false
		m.err = msg.err

		if msg.err == nil {
			m.billID = new(msg.billID)
			m.status = fmt.Sprintf("Added %s to bill #%d", msg.name, msg.billID)
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+o":
			if m.billID == nil {
				return m, nil
			}

			return m, OpenBill(*m.billID)
		case "ctrl+n":
			m.billID = nil
			m.status = "The next product starts a new bill"

			return m, nil
		}

		if !m.search.Focused() {
			if msg.Type == tea.KeyEsc {
				return m, Back
			}

			return m, m.search.Focus()
		}
	}

	var (
		cmd tea.Cmd
		out searchOutcome
	)

	m.search, cmd, out = m.search.Update(msg)

	switch {
	case out.left:
		return m, Back
	case out.picked == nil:
		return m, cmd
	case out.picked.Type == search.KindBrand:
		return m, tea.Batch(cmd, m.search.SetQuery(out.picked.Brand))
	}

	if m.busy {
		return m, cmd
	}

	product := out.picked.Product()
	adder, billID := m.adder, m.billID
	m.busy = true
	m.search.Clear()

	return m, tea.Batch(cmd, func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		id, err := adder.QuickAdd(ctx, billID, product.ID, 1)

		return quickAddMsg{billID: id, name: product.Name(), err: err}
	})
}

func (m QuickAddModel) View() string {
	target := "a new bill"
	if m.billID != nil {
		target = fmt.Sprintf("bill #%d", *m.billID)
	}

	status := ""

	switch {
	case m.busy:
		status = faintStyle.Render("Adding...")
	case m.err != nil:
		status = errorStyle.Render(errText(m.err))
	case m.status != "":
		status = okStyle.Render(m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render("Adding to "+target),
			"",
			m.search.View(),
			"",
			status,
		),
	)
}
