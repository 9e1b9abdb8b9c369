package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillpad/internal/api"
	"github.com/MrJamesThe3rd/tillpad/internal/bill"
	"github.com/MrJamesThe3rd/tillpad/internal/config"
	"github.com/MrJamesThe3rd/tillpad/internal/export"
	"github.com/MrJamesThe3rd/tillpad/internal/format"
	"github.com/MrJamesThe3rd/tillpad/internal/search"
)

// ClientDirectory looks up the clients a bill can be assigned to.
type ClientDirectory interface {
	SearchClients(ctx context.Context, q string) ([]bill.Client, error)
	GetClient(ctx context.Context, id int64) (*bill.Client, error)
}

// BillPreviewer renders a saved bill the way the backend prints it.
type BillPreviewer interface {
	PreviewBill(ctx context.Context, id int64) (*api.Preview, error)
}

type editorState int

const (
	editorLoading editorState = iota
	editorBrowse
	editorSearch
	editorClient
	editorAdjust
	editorFinalize
	editorExport
	editorPreview
)

// adjustValues are the huh bindings of the discount and tax forms. They live
// behind a pointer so the form keeps writing to them across model copies.
type adjustValues struct {
	tax   bool
	name  string
	kind  string
	value string
}

type EditorModel struct {
	CommonModel
	store    *bill.Store
	clients  ClientDirectory
	previews BillPreviewer
	exports  *export.Service
	cfg      *config.Config

	openID int64

	state   editorState
	table   table.Model
	search  SearchBox
	spinner spinner.Model
	busy    bool

	clientInput   textinput.Model
	clientResults []bill.Client
	clientCursor  int
	clientTick    uint64
	clientName    string

	form    *huh.Form
	adjust  *adjustValues
	confirm *bool

	exportView ExportModel
	preview    string

	status string
	err    error
}

// NewEditorModel returns an editor for bill id, or for a new bill when id is 0.
func NewEditorModel(
	store *bill.Store,
	src search.Source,
	clients ClientDirectory,
	previews BillPreviewer,
	exports *export.Service,
	cfg *config.Config,
	id int64,
) EditorModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 3},
			{Title: "Item", Width: 36},
			{Title: "Qty", Width: 5},
			{Title: "Price", Width: 12},
			{Title: "Total", Width: 14},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
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

	ci := textinput.New()
	ci.Prompt = "Client: "
	ci.Placeholder = "name or phone (empty clears)"
	ci.CharLimit = 60
	ci.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return EditorModel{
		store:       store,
		clients:     clients,
		previews:    previews,
		exports:     exports,
		cfg:         cfg,
		openID:      id,
		state:       editorLoading,
		table:       t,
		search:      NewSearchBox(src, cfg.Search.MinQueryLength, cfg.Search.Limit, cfg.Search.Debounce, cfg.Bill.CurrencySymbol),
		spinner:     sp,
		clientInput: ci,
	}
}

func (m EditorModel) Title() string {
	b := m.store.Snapshot()
	if b.Number == "" {
		return "Bill"
	}

	return "Bill " + b.Number
}

func (m EditorModel) ShortHelp() string {
	switch m.state {
	case editorSearch:
		return "Type to search | ↑/↓: choose | Enter: add | Esc: close"
	case editorClient:
		return "Type to search | ↑/↓: choose | Enter: assign | Esc: cancel"
	case editorAdjust, editorFinalize:
		return "Enter: confirm | Esc: cancel"
	case editorExport:
		return m.exportView.ShortHelp()
	case editorPreview:
		return "Esc: close preview"
	}

	return "s: search | +/-: qty | d: remove | c: client | %: discount | t: tax | f: finalize | p: preview | x: export | r: reload | Esc: back"
}

func (m EditorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.openCmd())
}

// Messages

type billOpenedMsg struct {
	id  int64
	err error
}

type billOpMsg struct {
	note string
	err  error
}

type clientTickMsg struct {
	tag uint64
}

type clientResultsMsg struct {
	tag     uint64
	clients []bill.Client
	err     error
}

type clientNameMsg struct {
	id   int64
	name string
}

type previewMsg struct {
	text string
	err  error
}

func (m EditorModel) openCmd() tea.Cmd {
	store, id := m.store, m.openID

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		if id == 0 {
			created, err := store.CreateNewBill(ctx)
			if err != nil {
				return billOpenedMsg{err: err}
			}

			id = created.ID
		}

		return billOpenedMsg{id: id, err: store.LoadBill(ctx, id)}
	}
}

// opCmd runs a store operation off the UI goroutine.
func (m EditorModel) opCmd(note string, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		return billOpMsg{note: note, err: op(ctx)}
	}
}

func (m EditorModel) clientNameCmd() tea.Cmd {
	b := m.store.Snapshot()
	if b.ClientID == nil {
		return nil
	}

	id, clients := *b.ClientID, m.clients

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		c, err := clients.GetClient(ctx, id)
		if err != nil {
			return clientNameMsg{id: id, name: fmt.Sprintf("client #%d", id)}
		}

		return clientNameMsg{id: id, name: c.Name}
	}
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg)
		m.table.SetHeight(max(5, msg.Height-18))

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		if m.state == editorExport {
			updated, exportCmd := m.exportView.Update(msg)
			m.exportView = updated.(ExportModel)
			cmd = tea.Batch(cmd, exportCmd)
		}

		return m, cmd

	case billOpenedMsg:
		// A created bill is reloaded, never created again.
		if msg.id != 0 {
			m.openID = msg.id
		}

		m.busy = false
		m.state = editorBrowse
		m.err = msg.err
		m.refreshTable()

		return m, m.clientNameCmd()

	case billOpMsg:
		m.busy = false
		m.err = msg.err

		if msg.err == nil {
			m.status = msg.note
		}

		m.refreshTable()

		return m, m.clientNameCmd()

	case previewMsg:
		m.busy = false

		if m.state != editorPreview {
			return m, nil
		}

		if msg.err != nil {
			m.state = editorBrowse
			m.err = msg.err
			m.table.Focus()

			return m, nil
		}

		m.preview = msg.text

		return m, nil

	case clientNameMsg:
		if b := m.store.Snapshot(); b.ClientID != nil && *b.ClientID == msg.id {
			m.clientName = msg.name
		}

		return m, nil

	case clientTickMsg:
		return m, m.fireClientSearch(msg.tag)

	case clientResultsMsg:
		if msg.tag == m.clientTick {
			m.clientResults = msg.clients
			m.clientCursor = 0
			m.err = msg.err
		}

		return m, nil

	case exportClosedMsg:
		m.state = editorBrowse
		m.table.Focus()

		return m, nil

	case searchTickMsg, searchResultMsg:
		var (
			cmd tea.Cmd
			out searchOutcome
		)

		m.search, cmd, out = m.search.Update(msg)

		return m.handleSearch(cmd, out)
	}

	switch m.state {
	case editorLoading:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	case editorBrowse:
		return m.updateBrowse(msg)
	case editorSearch:
		var (
			cmd tea.Cmd
			out searchOutcome
		)

		m.search, cmd, out = m.search.Update(msg)

		return m.handleSearch(cmd, out)
	case editorClient:
		return m.updateClient(msg)
	case editorAdjust, editorFinalize:
		return m.updateForm(msg)
	case editorExport:
		updated, cmd := m.exportView.Update(msg)
		m.exportView = updated.(ExportModel)

		return m, cmd
	case editorPreview:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && (keyMsg.Type == tea.KeyEsc || keyMsg.String() == "p") {
			m.state = editorBrowse
			m.preview = ""
			m.table.Focus()
		}
	}

	return m, nil
}

func (m EditorModel) handleSearch(cmd tea.Cmd, out searchOutcome) (tea.Model, tea.Cmd) {
	if out.left {
		m.state = editorBrowse
		m.table.Focus()

		return m, cmd
	}

	if out.picked == nil {
		return m, cmd
	}

	sel := *out.picked

	if sel.Type == search.KindBrand {
		// Narrow the search to the brand's products.
		return m, tea.Batch(cmd, m.search.SetQuery(sel.Brand))
	}

	m.search.Clear()
	m.busy = true

	product := sel.Product()
	store := m.store

	return m, tea.Batch(cmd, m.spinner.Tick, m.opCmd("Added "+product.Name(), func(ctx context.Context) error {
		return store.AddItem(ctx, product, 1)
	}))
}

func (m EditorModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	store := m.store

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "s", "/":
		m.state = editorSearch
		m.table.Blur()

		return m, m.search.Focus()
	case "+", "=":
		return m.changeQuantity(1)
	case "-":
		return m.changeQuantity(-1)
	case "d", "delete":
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}

		m.busy = true

		return m, tea.Batch(m.spinner.Tick, m.opCmd("Removed "+it.ProductName, func(ctx context.Context) error {
			return store.RemoveItem(ctx, it.ID)
		}))
	case "c":
		m.state = editorClient
		m.table.Blur()
		m.clientInput.SetValue("")
		m.clientResults = nil

		return m, m.clientInput.Focus()
	case "%":
		return m.openAdjust(false)
	case "t":
		return m.openAdjust(true)
	case "f":
		return m.openFinalize()
	case "x":
		b := m.store.Snapshot()
		if b.ID == 0 {
			m.err = bill.ErrNoBillID
			return m, nil
		}

		m.state = editorExport
		m.table.Blur()
		m.exportView = NewExportModel(m.exports, b, m.cfg.Bill.ExportDir)

		return m, m.exportView.Init()
	case "p":
		return m.openPreview()
	case "r":
		// After a failed load the store is empty; retry the bill that was asked for.
		if id := m.store.Snapshot().ID; id != 0 {
			m.openID = id
		}

		m.busy = true

		return m, tea.Batch(m.spinner.Tick, m.openCmd())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m EditorModel) selectedItem() (bill.LineItem, bool) {
	items := m.store.Snapshot().Items

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(items) {
		return bill.LineItem{}, false
	}

	return items[idx], true
}

func (m EditorModel) changeQuantity(delta int) (tea.Model, tea.Cmd) {
	it, ok := m.selectedItem()
	if !ok {
		return m, nil
	}

	store := m.store
	m.busy = true

	return m, tea.Batch(m.spinner.Tick, m.opCmd("", func(ctx context.Context) error {
		_, err := store.AdjustItemQuantity(ctx, it.ID, delta)
		return err
	}))
}

func (m EditorModel) openPreview() (tea.Model, tea.Cmd) {
	b := m.store.Snapshot()
	if b.ID == 0 {
		m.err = bill.ErrNoBillID
		return m, nil
	}

	m.state = editorPreview
	m.preview = ""
	m.busy = true
	m.table.Blur()

	store, previews := m.store, m.previews

	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		// The preview is rendered from the saved bill.
		if err := store.SaveBill(ctx); err != nil {
			return previewMsg{err: err}
		}

		p, err := previews.PreviewBill(ctx, b.ID)
		if err != nil {
			return previewMsg{err: fmt.Errorf("loading preview: %w", err)}
		}

		return previewMsg{text: p.Text()}
	})
}

// Client search

func (m EditorModel) updateClient(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		m.state = editorBrowse
		m.clientInput.Blur()
		m.table.Focus()

		return m, nil
	case tea.KeyDown:
		if m.clientCursor < len(m.clientResults)-1 {
			m.clientCursor++
		}

		return m, nil
	case tea.KeyUp:
		if m.clientCursor > 0 {
			m.clientCursor--
		}

		return m, nil
	case tea.KeyEnter:
		return m.assignClient()
	}

	before := m.clientInput.Value()

	var cmd tea.Cmd
	m.clientInput, cmd = m.clientInput.Update(msg)

	if m.clientInput.Value() == before {
		return m, cmd
	}

	m.clientTick++
	tag := m.clientTick

	return m, tea.Batch(cmd, tea.Tick(m.cfg.Search.Debounce, func(time.Time) tea.Msg {
		return clientTickMsg{tag: tag}
	}))
}

func (m EditorModel) fireClientSearch(tag uint64) tea.Cmd {
	if tag != m.clientTick {
		return nil
	}

	q, clients := m.clientInput.Value(), m.clients

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		found, err := clients.SearchClients(ctx, q)

		return clientResultsMsg{tag: tag, clients: found, err: err}
	}
}

func (m EditorModel) assignClient() (tea.Model, tea.Cmd) {
	var (
		id   *int64
		note = "Client cleared"
		name string
	)

	switch {
	case strings.TrimSpace(m.clientInput.Value()) == "":
	case m.clientCursor < len(m.clientResults):
		c := m.clientResults[m.clientCursor]
		id, name = new(c.ID), c.Name
		note = "Client set to " + c.Name
	default:
		return m, nil
	}

	m.state = editorBrowse
	m.clientInput.Blur()
	m.table.Focus()
	m.clientName = name
	m.busy = true

	store := m.store

	return m, tea.Batch(m.spinner.Tick, m.opCmd(note, func(ctx context.Context) error {
		return store.SetClient(ctx, id)
	}))
}

// Discount, tax and finalize forms

func validateAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	v, err := decimal.NewFromString(s)
	if err != nil || v.IsNegative() {
		return errors.New("Enter a number of 0 or more")
	}

	return nil
}

func (m EditorModel) openAdjust(tax bool) (tea.Model, tea.Cmd) {
	b := m.store.Snapshot()
	vals := &adjustValues{tax: tax, kind: string(bill.KindPercentage), name: "GST"}

	switch {
	case tax && b.Tax != nil:
		vals.name, vals.kind, vals.value = b.Tax.Name, string(b.Tax.Kind), b.Tax.Value.String()
	case !tax && b.Discount != nil:
		vals.kind, vals.value = string(b.Discount.Kind), b.Discount.Value.String()
	}

	title := "Discount"
	if tax {
		title = "Tax"
	}

	fields := []huh.Field{}

	if tax {
		fields = append(fields, huh.NewInput().
			Key("name").
			Title("Tax name").
			Value(&vals.name))
	}

	fields = append(fields,
		huh.NewSelect[string]().
			Key("kind").
			Title(title+" type").
			Options(
				huh.NewOption("Percentage (%)", string(bill.KindPercentage)),
				huh.NewOption("Fixed amount", string(bill.KindFixed)),
			).
			Value(&vals.kind),
		huh.NewInput().
			Key("value").
			Title("Value").
			Description("Leave empty to remove").
			Value(&vals.value).
			Validate(validateAmount),
	)

	m.adjust = vals
	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)
	m.state = editorAdjust
	m.table.Blur()

	return m, m.form.Init()
}

func (m EditorModel) openFinalize() (tea.Model, tea.Cmd) {
	b := m.store.Snapshot()
	if b.ID == 0 {
		m.err = bill.ErrNoBillID
		return m, nil
	}

	ok := false
	m.confirm = &ok
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Finalize %s for %s?", b.Number, Money(m.store.Totals().Total, m.cfg.Bill.CurrencySymbol))).
			Description("A finalized bill can no longer be edited.").
			Affirmative("Finalize").
			Negative("Cancel").
			Value(m.confirm),
	)).WithWidth(50).WithShowHelp(false)
	m.state = editorFinalize
	m.table.Blur()

	return m, m.form.Init()
}

func (m EditorModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = editorBrowse
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

	state := m.state
	m.state = editorBrowse
	m.form = nil
	m.table.Focus()

	if state == editorFinalize {
		if !*m.confirm {
			return m, nil
		}

		return m.finalize()
	}

	return m.applyAdjust()
}

func (m EditorModel) applyAdjust() (tea.Model, tea.Cmd) {
	vals, store := *m.adjust, m.store
	raw := strings.TrimSpace(vals.value)

	var (
		note string
		op   func(ctx context.Context) error
	)

	switch {
	case vals.tax && raw == "":
		note, op = "Tax removed", store.RemoveTax
	case !vals.tax && raw == "":
		note, op = "Discount removed", store.RemoveDiscount
	case vals.tax:
		t := bill.Tax{Name: strings.TrimSpace(vals.name), Kind: bill.Kind(vals.kind), Value: decimal.RequireFromString(raw)}
		note = "Tax applied"
		op = func(ctx context.Context) error { return store.ApplyTax(ctx, t) }
	default:
		d := bill.Discount{Kind: bill.Kind(vals.kind), Value: decimal.RequireFromString(raw)}
		note = "Discount applied"
		op = func(ctx context.Context) error { return store.ApplyDiscount(ctx, d) }
	}

	m.busy = true

	return m, tea.Batch(m.spinner.Tick, m.opCmd(note, op))
}

func (m EditorModel) finalize() (tea.Model, tea.Cmd) {
	store := m.store
	m.busy = true

	return m, tea.Batch(m.spinner.Tick, m.opCmd("Bill finalized", func(ctx context.Context) error {
		_, err := store.FinalizeBill(ctx)
		return err
	}))
}

func (m *EditorModel) refreshTable() {
	b := m.store.Snapshot()
	rows := make([]table.Row, 0, len(b.Items))

	for i, it := range b.Items {
		rows = append(rows, table.Row{
			fmt.Sprint(i + 1),
			format.Truncate(it.ProductName, 36),
			fmt.Sprint(it.Quantity),
			Money(it.UnitPrice, m.cfg.Bill.CurrencySymbol),
			Money(it.LineTotal(), m.cfg.Bill.CurrencySymbol),
		})
	}

	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}

	if b.ClientID == nil {
		m.clientName = ""
	}
}

// View

func (m EditorModel) View() string {
	if m.state == editorLoading {
		msg := fmt.Sprintf("%s Opening bill...", m.spinner.View())
		if m.err != nil {
			msg = errorStyle.Render(errText(m.err)) + "\n\n(Esc to go back)"
		}

		return lipgloss.NewStyle().Padding(2).Render(msg)
	}

	if m.state == editorExport {
		return m.exportView.View()
	}

	b := m.store.Snapshot()

	if m.store.Phase() == bill.PhaseEmpty {
		return lipgloss.NewStyle().Padding(2).Render(
			errorStyle.Render(errText(m.err)) + "\n\nr: retry | Esc: back",
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(b),
		"",
		m.search.View(),
		"",
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
		m.viewTotals(b),
		m.viewStatus(),
	)

	var panel string

	switch m.state {
	case editorClient:
		panel = m.viewClientPanel()
	case editorAdjust, editorFinalize:
		if m.form != nil {
			panel = panelStyle.Width(50).Render(m.form.View())
		}
	case editorPreview:
		body := m.preview
		if body == "" {
			body = m.spinner.View() + " Loading preview..."
		}

		panel = panelStyle.Width(60).Render("Preview\n\n" + body)
	}

	if panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m EditorModel) viewHeader(b bill.Bill) string {
	client := "no client"
	if b.ClientID != nil {
		client = m.clientName
		if client == "" {
			client = fmt.Sprintf("client #%d", *b.ClientID)
		}
	}

	status := activeStyle(m.store.Phase().String())
	if m.store.Dirty() {
		status += faintStyle.Render(" (unsaved)")
	}

	return fmt.Sprintf("%s  %s  %s", headerStyle.Render(b.Number), status, faintStyle.Render(client))
}

func (m EditorModel) viewTotals(b bill.Bill) string {
	t := m.store.Totals()
	sym := m.cfg.Bill.CurrencySymbol

	lines := []string{fmt.Sprintf("Subtotal: %s", Money(t.Subtotal, sym))}

	if b.Discount != nil {
		label := "Discount"
		if b.Discount.Kind == bill.KindPercentage {
			label += " (" + format.Percentage(b.Discount.Value, 2) + ")"
		}

		lines = append(lines, fmt.Sprintf("%s: -%s", label, Money(t.Discount, sym)))
	}

	if b.Tax != nil {
		label := b.Tax.Name
		if b.Tax.Kind == bill.KindPercentage {
			label += " (" + format.Percentage(b.Tax.Value, 2) + ")"
		}

		lines = append(lines, fmt.Sprintf("%s: %s", label, Money(t.Tax, sym)))
	}

	lines = append(lines, headerStyle.Render("Total: "+Money(t.Total, sym)))

	return lipgloss.NewStyle().PaddingTop(1).Render(strings.Join(lines, "\n"))
}

func (m EditorModel) viewStatus() string {
	switch {
	case m.busy:
		return m.spinner.View() + " Saving..."
	case m.err != nil:
		return errorStyle.Render(errText(m.err))
	case m.status != "":
		return okStyle.Render(m.status)
	}

	return ""
}

func (m EditorModel) viewClientPanel() string {
	var sb strings.Builder

	sb.WriteString("Assign client\n\n")
	sb.WriteString(m.clientInput.View())

	for i, c := range m.clientResults {
		cursor := "  "
		if i == m.clientCursor {
			cursor = "> "
		}

		sb.WriteString(fmt.Sprintf("\n%s%s  %s", cursor, c.Name, faintStyle.Render(format.Phone(c.Phone))))
	}

	if len(m.clientResults) == 0 && len([]rune(strings.TrimSpace(m.clientInput.Value()))) >= 2 {
		sb.WriteString("\n" + faintStyle.Render("  No clients found"))
	}

	return panelStyle.Width(50).Render(sb.String())
}
