package view

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tillpad/internal/catalog"
	"github.com/MrJamesThe3rd/tillpad/internal/format"
)

type productsState int

const (
	productsBrowse productsState = iota
	productsSearch
	productsMenu
	productsQuantity
	productsEdit
	productsBulkConfirm
	productsHistory
)

var stockFilters = []struct {
	label string
	value string
}{
	{label: "All", value: ""},
	{label: "Low stock", value: catalog.FilterLowStock},
	{label: "Out of stock", value: catalog.FilterOutOfStock},
}

type ProductsModel struct {
	CommonModel
	catalog *catalog.Service
	symbol  string

	state    productsState
	table    table.Model
	page     *catalog.ProductPage
	query    catalog.ProductQuery
	filter   int
	selected *catalog.Selection

	searchInput textinput.Model
	qtyInput    textinput.Model

	menu       []catalog.Action
	menuCursor int

	form    *huh.Form
	edit    *catalog.ProductForm
	confirm *bool

	history []catalog.PriceChange

	loading bool
	err     error
	status  string
}

func NewProductsModel(svc *catalog.Service, symbol string) ProductsModel {
	columns := []table.Column{
		{Title: " ", Width: 1},
		{Title: "ID", Width: 5},
		{Title: "Brand", Width: 16},
		{Title: "Description", Width: 30},
		{Title: "Category", Width: 12},
		{Title: "Price", Width: 12},
		{Title: "Stock", Width: 6},
		{Title: "Min", Width: 5},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	si := textinput.New()
	si.Prompt = "Filter: "
	si.Placeholder = "brand, description or category"
	si.CharLimit = 60
	si.Width = 40

	qi := textinput.New()
	qi.Prompt = "Quantity: "
	qi.CharLimit = 8
	qi.Width = 10

	return ProductsModel{
		catalog:     svc,
		symbol:      symbol,
		table:       t,
		query:       catalog.ProductQuery{Page: 1},
		selected:    catalog.NewSelection(),
		searchInput: si,
		qtyInput:    qi,
		loading:     true,
	}
}

func (m ProductsModel) Title() string { return "Products" }

func (m ProductsModel) ShortHelp() string {
	switch m.state {
	case productsSearch, productsQuantity:
		return "Enter: apply | Esc: cancel"
	case productsMenu:
		return "↑/↓: choose | Enter: run | Esc: close"
	case productsEdit, productsBulkConfirm:
		return "Navigate form | Esc: cancel"
	case productsHistory:
		return "Esc: close"
	}

	if m.selected.Bulk() {
		return "space: select | D: delete selected | b: leave bulk mode | Esc: back"
	}

	return "/: filter | f: stock | v: deleted | ←/→: page | m: menu | q: qty | e: edit | h: history | b: bulk | r: refresh | Esc: back"
}

func (m ProductsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ProductsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadProductsMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.page = msg.page
			m.query.Page = msg.page.CurrentPage
			m.refreshTable()
		}

		return m, nil

	case productActionMsg:
		m.state = productsBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = ""
			m.err = msg.err

			return m, nil
		}

		m.err = nil
		m.status = msg.note

		if msg.bulk && m.selected.Bulk() {
			m.selected.ToggleBulk()
		}

		return m, m.loadCmd()

	case priceHistoryMsg:
		if msg.err != nil {
			m.state = productsBrowse
			m.table.Focus()
			m.err = msg.err

			return m, nil
		}

		m.history = msg.history

		return m, nil

	case tea.WindowSizeMsg:
		m.setSize(msg)
		m.table.SetHeight(max(5, msg.Height-12))

		return m, nil
	}

	switch m.state {
	case productsBrowse:
		return m.updateBrowse(msg)
	case productsSearch:
		return m.updateSearch(msg)
	case productsMenu:
		return m.updateMenu(msg)
	case productsQuantity:
		return m.updateQuantity(msg)
	case productsEdit, productsBulkConfirm:
		return m.updateForm(msg)
	case productsHistory:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && (keyMsg.Type == tea.KeyEsc || keyMsg.String() == "h") {
			m.state = productsBrowse
			m.history = nil
			m.table.Focus()
		}
	}

	return m, nil
}

func (m ProductsModel) current() (catalog.Product, bool) {
	if m.page == nil {
		return catalog.Product{}, false
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.page.Products) {
		return catalog.Product{}, false
	}

	return m.page.Products[idx], true
}

func (m ProductsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			if m.selected.Bulk() {
				m.selected.ToggleBulk()
				m.refreshTable()

				return m, nil
			}

			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "/":
			m.state = productsSearch
			m.table.Blur()
			m.searchInput.SetValue(m.query.Search)

			return m, m.searchInput.Focus()
		case "f":
			m.filter = (m.filter + 1) % len(stockFilters)
			m.query.FilterType = stockFilters[m.filter].value
			m.query.Page = 1

			return m, m.loadCmd()
		case "v":
			m.query.ViewDeleted = !m.query.ViewDeleted
			m.query.Page = 1
			m.selected.Clear()

			return m, m.loadCmd()
		case "right", "n":
			if m.page != nil && m.query.Page < m.page.TotalPages {
				m.query.Page++
				return m, m.loadCmd()
			}

			return m, nil
		case "left", "p":
			if m.query.Page > 1 {
				m.query.Page--
				return m, m.loadCmd()
			}

			return m, nil
		case "b":
			if m.query.ViewDeleted {
				return m, nil
			}

			m.selected.ToggleBulk()
			m.refreshTable()

			return m, nil
		case " ":
			if p, ok := m.current(); ok && m.selected.Bulk() {
				m.selected.Toggle(p.ID)
				m.refreshTable()
			}

			return m, nil
		case "D":
			return m.startBulkDelete()
		case "m", "enter":
			if _, ok := m.current(); !ok {
				return m, nil
			}

			m.menu = catalog.Menu(m.query.ViewDeleted)
			m.menuCursor = 0
			m.state = productsMenu

			return m, nil
		case "q":
			p, ok := m.current()
			if !ok || m.query.ViewDeleted {
				return m, nil
			}

			m.state = productsQuantity
			m.table.Blur()
			m.qtyInput.SetValue(strconv.Itoa(p.Quantity))
			m.qtyInput.CursorEnd()

			return m, m.qtyInput.Focus()
		case "e":
			return m.startEdit()
		case "h":
			p, ok := m.current()
			if !ok {
				return m, nil
			}

			m.state = productsHistory
			m.table.Blur()

			return m, m.historyCmd(p.ID)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ProductsModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = productsBrowse
			m.searchInput.Blur()
			m.table.Focus()

			return m, nil
		case tea.KeyEnter:
			m.state = productsBrowse
			m.searchInput.Blur()
			m.table.Focus()
			m.query.Search = strings.TrimSpace(m.searchInput.Value())
			m.query.Page = 1

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	return m, cmd
}

func (m ProductsModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "m":
		m.state = productsBrowse
		return m, nil
	case "down", "j":
		if m.menuCursor < len(m.menu)-1 {
			m.menuCursor++
		}
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "enter":
		p, ok := m.current()
		if !ok {
			m.state = productsBrowse
			return m, nil
		}

		action := m.menu[m.menuCursor]
		if action == catalog.ActionEdit {
			return m.startEdit()
		}

		svc := m.catalog
		m.state = productsBrowse

		return m, m.actionCmd(fmt.Sprintf("%s: %s", action.Label(), productLabel(p)), func(ctx context.Context) error {
			return svc.Perform(ctx, action, p.ID)
		})
	}

	return m, nil
}

func (m ProductsModel) updateQuantity(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = productsBrowse
			m.qtyInput.Blur()
			m.table.Focus()

			return m, nil
		case tea.KeyEnter:
			p, ok := m.current()
			if !ok {
				return m, nil
			}

			m.qtyInput.Blur()

			svc, raw := m.catalog, m.qtyInput.Value()

			return m, func() tea.Msg {
				ctx, cancel := APICtx()
				defer cancel()

				res, err := svc.SetQuantity(ctx, p.ID, raw)
				if err != nil {
					return productActionMsg{err: err}
				}

				note := fmt.Sprintf("%s: stock %d", productLabel(p), res.NewQuantity)
				if res.IsLowStock {
					note += " (low stock)"
				}

				return productActionMsg{note: note}
			}
		}
	}

	var cmd tea.Cmd
	m.qtyInput, cmd = m.qtyInput.Update(msg)

	return m, cmd
}

func (m ProductsModel) startEdit() (tea.Model, tea.Cmd) {
	p, ok := m.current()
	if !ok || m.query.ViewDeleted {
		m.state = productsBrowse
		return m, nil
	}

	m.edit = &catalog.ProductForm{
		Description: productLabel(p),
		Price:       p.Price.StringFixed(2),
		Quantity:    strconv.Itoa(p.Quantity),
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.edit.Description).
				Validate(catalog.ValidateDescription),
			huh.NewInput().
				Key("price").
				Title("Unit Price").
				Value(&m.edit.Price).
				Validate(catalog.ValidatePrice),
			huh.NewInput().
				Key("quantity").
				Title("Quantity in Stock").
				Value(&m.edit.Quantity).
				Validate(catalog.ValidateQuantity),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = productsEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ProductsModel) startBulkDelete() (tea.Model, tea.Cmd) {
	if !m.selected.Bulk() || m.selected.Len() == 0 {
		m.status = "Select products with space first"
		return m, nil
	}

	m.confirm = new(false)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %d selected products?", m.selected.Len())).
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = productsBulkConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m ProductsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = productsBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	svc := m.catalog

	if m.state == productsBulkConfirm {
		if !*m.confirm {
			m.state = productsBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}

		ids := m.selected.IDs()

		return m, func() tea.Msg {
			ctx, cancel := APICtx()
			defer cancel()

			n, err := svc.BulkDelete(ctx, ids)
			if err != nil {
				return productActionMsg{err: err}
			}

			return productActionMsg{note: fmt.Sprintf("Deleted %d products", n), bulk: true}
		}
	}

	p, ok := m.current()
	if !ok {
		return m, nil
	}

	edit := *m.edit

	return m, m.actionCmd("Saved "+productLabel(p), func(ctx context.Context) error {
		return svc.SavePriceAndQuantity(ctx, p.ID, edit)
	})
}

func (m ProductsModel) View() string {
	if m.loading && m.page == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading products...")
	}

	view := "Active"
	if m.query.ViewDeleted {
		view = "Deleted"
	}

	search := m.query.Search
	if search == "" {
		search = "-"
	}

	header := fmt.Sprintf(
		"[/] Search: %s | [f] Stock: %s | [v] View: %s",
		activeStyle(search),
		activeStyle(stockFilters[m.filter].label),
		activeStyle(view),
	)

	if m.selected.Bulk() {
		header += " | " + activeStyle(fmt.Sprintf("Bulk: %d selected", m.selected.Len()))
	}

	footer := ""
	if m.page != nil {
		footer = faintStyle.Render(fmt.Sprintf("Page %d of %d, %d products", m.page.CurrentPage, max(1, m.page.TotalPages), m.page.TotalProducts))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	parts := []string{lipgloss.NewStyle().PaddingBottom(1).Render(header)}

	switch m.state {
	case productsSearch:
		parts = append(parts, m.searchInput.View())
	case productsQuantity:
		parts = append(parts, m.qtyInput.View())
	}

	parts = append(parts, tableView, footer)

	switch {
	case m.err != nil:
		parts = append(parts, errorStyle.Render(errText(m.err)))
	case m.status != "":
		parts = append(parts, okStyle.Render(m.status))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if panel := m.viewPanel(); panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ProductsModel) viewPanel() string {
	p, _ := m.current()

	switch m.state {
	case productsMenu:
		var sb strings.Builder

		sb.WriteString(productLabel(p) + "\n")

		for i, a := range m.menu {
			cursor := "  "
			if i == m.menuCursor {
				cursor = "> "
			}

			sb.WriteString("\n" + cursor + a.Label())
		}

		return panelStyle.Width(36).Render(sb.String())

	case productsEdit, productsBulkConfirm:
		if m.form == nil {
			return ""
		}

		return panelStyle.Width(48).Render(m.form.View())

	case productsHistory:
		return panelStyle.Width(60).Render(m.viewHistory(p))
	}

	return ""
}

func (m ProductsModel) viewHistory(p catalog.Product) string {
	var sb strings.Builder

	sb.WriteString("Price history: " + productLabel(p) + "\n")

	switch {
	case m.history == nil:
		sb.WriteString("\nLoading...")
	case len(m.history) == 0:
		sb.WriteString("\n" + faintStyle.Render("No price changes recorded"))
	}

	for _, h := range m.history {
		sb.WriteString(fmt.Sprintf("\n%s  %s → %s  %s",
			format.Date(h.ChangedAt),
			Money(h.OldPrice, m.symbol),
			Money(h.NewPrice, m.symbol),
			faintStyle.Render(h.Username),
		))
	}

	return sb.String()
}

func productLabel(p catalog.Product) string {
	return strings.TrimSpace(p.Brand + " " + p.Description)
}

func (m *ProductsModel) refreshTable() {
	if m.page == nil {
		return
	}

	rows := make([]table.Row, 0, len(m.page.Products))
	for _, p := range m.page.Products {
		mark := ""
		if m.selected.Selected(p.ID) {
			mark = "*"
		}

		stock := strconv.Itoa(p.Quantity)
		if p.LowStock() {
			stock += "!"
		}

		rows = append(rows, table.Row{
			mark,
			strconv.FormatInt(p.ID, 10),
			format.Truncate(p.Brand, 16),
			format.Truncate(p.Description, 30),
			p.Category,
			Money(p.Price, m.symbol),
			stock,
			strconv.Itoa(p.MinStock),
		})
	}

	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// Messages

type loadProductsMsg struct {
	page *catalog.ProductPage
	err  error
}

type productActionMsg struct {
	note string
	err  error
	bulk bool
}

type priceHistoryMsg struct {
	history []catalog.PriceChange
	err     error
}

func (m ProductsModel) loadCmd() tea.Cmd {
	svc, q := m.catalog, m.query

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		page, err := svc.List(ctx, q)

		return loadProductsMsg{page: page, err: err}
	}
}

func (m ProductsModel) actionCmd(note string, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		if err := op(ctx); err != nil {
			return productActionMsg{err: err}
		}

		return productActionMsg{note: note}
	}
}

func (m ProductsModel) historyCmd(id int64) tea.Cmd {
	svc := m.catalog

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		history, err := svc.PriceHistory(ctx, id)
		if history == nil && err == nil {
			history = []catalog.PriceChange{}
		}

		return priceHistoryMsg{history: history, err: err}
	}
}
