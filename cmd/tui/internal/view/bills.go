package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tillpad/internal/api"
	"github.com/MrJamesThe3rd/tillpad/internal/format"
)

// BillDirectory lists the bills that can still be edited.
type BillDirectory interface {
	ActiveBills(ctx context.Context) ([]api.BillSummary, error)
}

type billsState int

const (
	billsStateList billsState = iota
	billsStateOpenID
)

// billItem wraps a bill summary to implement list.Item.
type billItem struct {
	summary api.BillSummary
	symbol  string
}

func (i billItem) Title() string {
	client := i.summary.ClientName
	if client == "" {
		client = "no client"
	}

	return fmt.Sprintf("%s  %s  %s", i.summary.Number, Money(i.summary.Total, i.symbol), client)
}

func (i billItem) Description() string {
	return fmt.Sprintf("%d items, updated %s", i.summary.ItemCount, format.Date(i.summary.UpdatedAt))
}

func (i billItem) FilterValue() string {
	return i.summary.Number + " " + i.summary.ClientName
}

type BillsModel struct {
	CommonModel
	bills  BillDirectory
	symbol string

	state   billsState
	list    list.Model
	form    *huh.Form
	idInput *string
	loading bool
	status  string
}

func NewBillsModel(bills BillDirectory, symbol string) BillsModel {
	l := list.New([]list.Item{}, billItemDelegate{}, 0, 0)
	l.Title = "Active Bills"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return BillsModel{
		bills:   bills,
		symbol:  symbol,
		list:    l,
		loading: true,
	}
}

func (m BillsModel) Title() string { return "Open Bill" }

func (m BillsModel) ShortHelp() string {
	if m.state == billsStateOpenID {
		return "Esc: cancel | Enter: open"
	}

	return "Esc: back | Enter: open | n: new bill | o: open by id | r: reload | /: filter"
}

func (m BillsModel) Init() tea.Cmd {
	return m.loadBillsCmd()
}

func (m BillsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBillsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "Error: " + errText(msg.err)
			return m, nil
		}

		m.refreshListItems(msg.bills)

		m.status = ""
		if len(msg.bills) == 0 {
			m.status = "No draft bills. Press n to start one."
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.setSize(msg)
		m.list.SetSize(msg.Width-4, msg.Height-8)

		return m, nil
	}

	switch m.state {
	case billsStateList:
		return m.updateList(msg)
	case billsStateOpenID:
		return m.updateOpenID(msg)
	}

	return m, nil
}

func (m BillsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break // let the list clear the filter
			}

			return m, Back
		case "enter":
			selected, ok := m.list.SelectedItem().(billItem)
			if !ok {
				return m, nil
			}

			return m, OpenBill(selected.summary.ID)
		case "n":
			return m, OpenBill(0)
		case "o":
			return m.startOpenID()
		case "r":
			m.loading = true
			return m, m.loadBillsCmd()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func validateBillID(s string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return errors.New("enter a bill id")
	}

	return nil
}

func (m BillsModel) startOpenID() (tea.Model, tea.Cmd) {
	m.idInput = new("")
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("bill_id").
				Title("Bill ID").
				Value(m.idInput).
				Validate(validateBillID),
		),
	).WithWidth(40).WithShowHelp(false)
	m.state = billsStateOpenID

	return m, m.form.Init()
}

func (m BillsModel) updateOpenID(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = billsStateList
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = billsStateList
	m.form = nil

	id, _ := strconv.ParseInt(strings.TrimSpace(*m.idInput), 10, 64)

	return m, OpenBill(id)
}

func (m BillsModel) View() string {
	if m.state == billsStateOpenID && m.form != nil {
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading bills...")
	}

	statusLine := ""
	if m.status != "" {
		statusLine = faintStyle.Render(m.status) + "\n"
	}

	return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())
}

func (m *BillsModel) refreshListItems(bills []api.BillSummary) {
	items := make([]list.Item, len(bills))
	for i, b := range bills {
		items[i] = billItem{summary: b, symbol: m.symbol}
	}

	m.list.SetItems(items)
}

// Messages

type loadBillsMsg struct {
	bills []api.BillSummary
	err   error
}

func (m BillsModel) loadBillsCmd() tea.Cmd {
	dir := m.bills

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		bills, err := dir.ActiveBills(ctx)

		return loadBillsMsg{bills: bills, err: err}
	}
}

// billItemDelegate renders items in the list.
type billItemDelegate struct{}

func (d billItemDelegate) Height() int                             { return 2 }
func (d billItemDelegate) Spacing() int                            { return 0 }
func (d billItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d billItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(billItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s\n", faintStyle.Render(i.Description()))
}
