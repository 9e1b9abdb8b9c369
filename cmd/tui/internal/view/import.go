package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tillpad/internal/stocksheet"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateParsing
	importStateReview
	importStateApplying
	importStateResult
)

type ImportModel struct {
	CommonModel
	sheets *stocksheet.Service
	symbol string

	state      importState
	filePicker filepicker.Model

	sheet    *stocksheet.Sheet
	rowList  list.Model
	selected map[int]bool

	result *stocksheet.Result
	status string
	err    error
}

func NewImportModel(svc *stocksheet.Service, symbol string) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt", ".tsv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		sheets:     svc,
		symbol:     symbol,
		filePicker: fp,
		selected:   make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Stock Sheet" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateReview:
		return "Space: toggle | a: all | n: none | Enter: apply | Esc: cancel"
	case importStateResult:
		return "Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateReview {
			return m.updateReview(msg)
		}

	case parseResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = "Error: " + errText(msg.err)

			return m, nil
		}

		if len(msg.sheet.Rows) == 0 {
			m.state = importStateResult
			m.status = "The sheet has no product rows."

			return m, nil
		}

		m.sheet = msg.sheet
		m.selected = make(map[int]bool, len(msg.sheet.Rows))
		m.state = importStateReview

		items := make([]list.Item, len(msg.sheet.Rows))
		for i, row := range msg.sheet.Rows {
			items[i] = sheetRowItem{row: row, index: i}
			m.selected[i] = true
		}

		delegate := sheetRowDelegate{selected: m.selected, symbol: m.symbol}
		m.rowList = list.New(items, delegate, 80, max(10, m.Height-8))
		m.rowList.Title = fmt.Sprintf("%s (%s, %d rows)", msg.sheet.Profile, msg.sheet.Charset, len(msg.sheet.Rows))
		m.rowList.SetShowStatusBar(false)
		m.rowList.SetFilteringEnabled(false)
		m.rowList.SetShowHelp(false)

		return m, nil

	case applyResultMsg:
		m.state = importStateResult
		m.result = msg.result

		if msg.err != nil {
			m.err = msg.err
			m.status = "Error: " + errText(msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Applied %d rows, skipped %d, failed %d.",
			len(msg.result.Applied), len(msg.result.Skipped), len(msg.result.Failed))

		return m, nil

	case tea.WindowSizeMsg:
		m.setSize(msg)

		if m.state == importStateReview {
			m.rowList.SetSize(msg.Width-4, msg.Height-8)
		}
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateParsing
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateReview, importStateResult:
		m.state = importStateFilePick
		m.sheet = nil
		m.result = nil
		m.err = nil
		m.status = ""
		m.selected = make(map[int]bool)

		return m, m.filePicker.Init()
	case importStateParsing, importStateApplying:
		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.rowList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.sheet.Rows {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.sheet.Rows {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		m.state = importStateApplying
		m.status = "Applying stock sheet..."

		return m, m.applyCmd()
	}

	var cmd tea.Cmd
	m.rowList, cmd = m.rowList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return m.viewFilePick()
	case importStateParsing, importStateApplying:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateReview:
		return lipgloss.NewStyle().Padding(1).Render(m.rowList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select a stock sheet (CSV with product_id and quantity columns):\n\n%s", m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	var sb strings.Builder

	sb.WriteString(okStyle.Render(m.status))

	if m.result != nil {
		for _, f := range m.result.Failed {
			sb.WriteString("\n" + errorStyle.Render("  "+f.Error()))
		}

		if len(m.result.LowStock) > 0 {
			ids := make([]string, len(m.result.LowStock))
			for i, id := range m.result.LowStock {
				ids[i] = fmt.Sprint(id)
			}

			sb.WriteString("\n\n" + markStyle.Render("Low stock: products "+strings.Join(ids, ", ")))
		}
	}

	sb.WriteString("\n\n(Esc to go back)")

	return style.Render(sb.String())
}

// Messages

type parseResultMsg struct {
	sheet *stocksheet.Sheet
	err   error
}

type applyResultMsg struct {
	result *stocksheet.Result
	err    error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	svc := m.sheets

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parseResultMsg{err: err}
		}
		defer f.Close()

		sheet, err := svc.Parse(f)

		return parseResultMsg{sheet: sheet, err: err}
	}
}

func (m ImportModel) applyCmd() tea.Cmd {
	svc := m.sheets
	rows := m.sheet.Rows

	approved := make(map[int]bool, len(m.selected))
	for i, ok := range m.selected {
		approved[rows[i].Line] = ok
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := svc.Apply(ctx, rows, func(r stocksheet.Row) bool {
			return approved[r.Line]
		})

		return applyResultMsg{result: res, err: err}
	}
}

// Sheet row list item

type sheetRowItem struct {
	row   stocksheet.Row
	index int
}

func (i sheetRowItem) Title() string       { return "" }
func (i sheetRowItem) Description() string { return "" }
func (i sheetRowItem) FilterValue() string { return "" }

// Sheet row list delegate

type sheetRowDelegate struct {
	selected map[int]bool
	symbol   string
}

func (d sheetRowDelegate) Height() int                             { return 1 }
func (d sheetRowDelegate) Spacing() int                            { return 0 }
func (d sheetRowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d sheetRowDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(sheetRowItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if d.selected[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	line := fmt.Sprintf("%s%s line %-4d product %-6d qty %-5d",
		cursor, checkbox, item.row.Line, item.row.ProductID, item.row.Quantity)

	if item.row.Price != nil {
		line += "  price " + Money(*item.row.Price, d.symbol)
	}

	fmt.Fprintln(w, line)
}
