package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tillpad/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tillpad/internal/api"
	"github.com/MrJamesThe3rd/tillpad/internal/bill"
	"github.com/MrJamesThe3rd/tillpad/internal/catalog"
	"github.com/MrJamesThe3rd/tillpad/internal/config"
	"github.com/MrJamesThe3rd/tillpad/internal/export"
	"github.com/MrJamesThe3rd/tillpad/internal/stocksheet"
)

type model struct {
	cfg    *config.Config
	logger *slog.Logger

	client         *api.Client
	catalogService *catalog.Service
	exportService  *export.Service
	sheetService   *stocksheet.Service

	currentView View
	returnTo    View
	size        *tea.WindowSizeMsg

	editorView   view.EditorModel
	billsView    view.BillsModel
	quickAddView view.QuickAddModel
	productsView view.ProductsModel
	importView   view.ImportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewEditor   View = 1
	ViewBills    View = 2
	ViewQuickAdd View = 3
	ViewProducts View = 4
	ViewImport   View = 5
)

func newLogger(cfg *config.Config) (*slog.Logger, *os.File, error) {
	f, err := tea.LogToFile(cfg.App.LogFile, strings.ToLower(cfg.App.Name))
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func newClient(cfg *config.Config, logger *slog.Logger) (*api.Client, error) {
	hc := &http.Client{Timeout: cfg.API.Timeout}

	var tokens api.TokenSource = api.NewPageToken(strings.TrimRight(cfg.API.BaseURL, "/")+cfg.API.TokenPage, hc)
	if cfg.API.CSRFToken != "" {
		tokens = api.StaticToken(cfg.API.CSRFToken)
	}

	return api.NewClient(cfg.API.BaseURL, cfg.API.Timeout,
		api.WithHTTPClient(hc),
		api.WithTokenSource(tokens),
		api.WithLogger(logger),
	)
}

func initialModel(cfg *config.Config, logger *slog.Logger) (model, error) {
	client, err := newClient(cfg, logger)
	if err != nil {
		return model{}, err
	}

	catSvc := catalog.NewService(client)
	sheetSvc := stocksheet.NewService(client, logger)

	return model{
		cfg:            cfg,
		logger:         logger,
		client:         client,
		catalogService: catSvc,
		exportService:  export.NewService(client),
		sheetService:   sheetSvc,
		currentView:    ViewMenu,
		quickAddView:   view.NewQuickAddModel(client, client, cfg, nil),
	}, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

// resize replays the last window size to a freshly built view.
func (m model) resize() tea.Cmd {
	if m.size == nil {
		return nil
	}

	size := *m.size

	return func() tea.Msg { return size }
}

func (m model) open(v View, init tea.Cmd) (tea.Model, tea.Cmd) {
	m.currentView = v
	return m, tea.Batch(init, m.resize())
}

func (m model) openEditor(id int64) (tea.Model, tea.Cmd) {
	if m.currentView != ViewEditor {
		m.returnTo = m.currentView
	}

	store := bill.NewStore(m.client, bill.WithLogger(m.logger))
	m.editorView = view.NewEditorModel(store, m.client, m.client, m.client, m.exportService, m.cfg, id)

	return m.open(ViewEditor, m.editorView.Init())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = &msg
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.openEditor(0)
			case "2":
				m.billsView = view.NewBillsModel(m.client, m.cfg.Bill.CurrencySymbol)
				return m.open(ViewBills, m.billsView.Init())
			case "3":
				m.quickAddView = view.NewQuickAddModel(m.client, m.client, m.cfg, m.quickAddView.BillID())
				return m.open(ViewQuickAdd, m.quickAddView.Init())
			case "4":
				m.productsView = view.NewProductsModel(m.catalogService, m.cfg.Bill.CurrencySymbol)
				return m.open(ViewProducts, m.productsView.Init())
			case "5":
				m.importView = view.NewImportModel(m.sheetService, m.cfg.Bill.CurrencySymbol)
				return m.open(ViewImport, m.importView.Init())
			}
		}
	case view.OpenBillMsg:
		return m.openEditor(msg.ID)
	case view.BackMsg:
		if m.currentView == ViewEditor && m.returnTo != ViewMenu {
			back := m.returnTo
			m.returnTo = ViewMenu

			switch back {
			case ViewBills:
				m.billsView = view.NewBillsModel(m.client, m.cfg.Bill.CurrencySymbol)
				return m.open(ViewBills, m.billsView.Init())
			case ViewQuickAdd:
				return m.open(ViewQuickAdd, m.quickAddView.Init())
			}
		}

		m.currentView = ViewMenu

		return m, nil
	}

	switch m.currentView {
	case ViewEditor:
		var newModel tea.Model
		newModel, cmd = m.editorView.Update(msg)
		m.editorView = newModel.(view.EditorModel)
	case ViewBills:
		var newModel tea.Model
		newModel, cmd = m.billsView.Update(msg)
		m.billsView = newModel.(view.BillsModel)
	case ViewQuickAdd:
		var newModel tea.Model
		newModel, cmd = m.quickAddView.Update(msg)
		m.quickAddView = newModel.(view.QuickAddModel)
	case ViewProducts:
		var newModel tea.Model
		newModel, cmd = m.productsView.Update(msg)
		m.productsView = newModel.(view.ProductsModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) active() view.View {
	switch m.currentView {
	case ViewEditor:
		return m.editorView
	case ViewBills:
		return m.billsView
	case ViewQuickAdd:
		return m.quickAddView
	case ViewProducts:
		return m.productsView
	case ViewImport:
		return m.importView
	}

	return nil
}

var helpStyle = lipgloss.NewStyle().Faint(true).PaddingLeft(2)

func (m model) View() string {
	if m.currentView == ViewMenu {
		return lipgloss.NewStyle().Padding(2).Render(
			m.cfg.App.Name + "\n\n" +
				"1. New Bill\n" +
				"2. Open Bill\n" +
				"3. Search Products\n" +
				"4. Manage Products\n" +
				"5. Import Stock Sheet\n\n" +
				"q. Quit",
		)
	}

	v := m.active()
	if v == nil {
		return "Unknown View"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Padding(1, 2, 0).Render(v.Title()),
		v.View(),
		helpStyle.Render(v.ShortHelp()),
	)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, logFile, err := newLogger(cfg)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	slog.SetDefault(logger)

	m, err := initialModel(cfg, logger)
	if err != nil {
		slog.Error("failed to create api client", "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
