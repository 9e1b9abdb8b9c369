package view

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/tillpad/internal/search"
)

// boxIDs tells apart the async messages of different search boxes.
var boxIDs atomic.Int64

type searchTickMsg struct {
	box int64
	tag uint64
}

type searchResultMsg struct {
	box int64
	res search.Result
}

// searchOutcome reports what a keystroke did to the box.
type searchOutcome struct {
	picked *search.Suggestion
	left   bool
}

// SearchBox is a product search input with debounced suggestions.
type SearchBox struct {
	id       int64
	input    textinput.Model
	session  *search.Session
	searcher search.Searcher
	debounce time.Duration
	symbol   string
}

func NewSearchBox(src search.Source, minLen, limit int, debounce time.Duration, symbol string) SearchBox {
	ti := textinput.New()
	ti.Placeholder = "Search brand or product..."
	ti.Prompt = "Search: "
	ti.CharLimit = 80
	ti.Width = 40

	return SearchBox{
		id:       boxIDs.Add(1),
		input:    ti,
		session:  search.NewSession(minLen),
		searcher: search.Searcher{Source: src, Limit: limit},
		debounce: debounce,
		symbol:   symbol,
	}
}

func (b SearchBox) Focused() bool { return b.input.Focused() }

func (b *SearchBox) Focus() tea.Cmd {
	return b.input.Focus()
}

func (b *SearchBox) Blur() {
	b.session.Escape()
	b.input.Blur()
}

// Clear empties the box after its selection has been used.
func (b *SearchBox) Clear() {
	b.session.Reset()
	b.input.SetValue("")
}

// SetQuery replaces the text and schedules a search for it.
func (b *SearchBox) SetQuery(q string) tea.Cmd {
	b.input.SetValue(q)
	b.input.CursorEnd()

	return b.schedule(b.session.Type(q))
}

func (b SearchBox) schedule(tag uint64) tea.Cmd {
	id := b.id

	return tea.Tick(b.debounce, func(time.Time) tea.Msg {
		return searchTickMsg{box: id, tag: tag}
	})
}

func (b SearchBox) searchCmd(req search.Request) tea.Cmd {
	searcher := b.searcher
	id := b.id

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		return searchResultMsg{box: id, res: searcher.Search(ctx, req)}
	}
}

// Update handles the box's own async messages and, when focused, keys.
func (b SearchBox) Update(msg tea.Msg) (SearchBox, tea.Cmd, searchOutcome) {
	switch msg := msg.(type) {
	case searchTickMsg:
		if msg.box != b.id {
			return b, nil, searchOutcome{}
		}

		if req, ok := b.session.Fire(msg.tag); ok {
			return b, b.searchCmd(req), searchOutcome{}
		}

		return b, nil, searchOutcome{}

	case searchResultMsg:
		if msg.box == b.id {
			b.session.Resolve(msg.res.Seq, msg.res.Suggestions, msg.res.Err)
		}

		return b, nil, searchOutcome{}

	case tea.KeyMsg:
		if !b.input.Focused() {
			return b, nil, searchOutcome{}
		}

		return b.updateKey(msg)
	}

	return b, nil, searchOutcome{}
}

func (b SearchBox) updateKey(msg tea.KeyMsg) (SearchBox, tea.Cmd, searchOutcome) {
	switch msg.Type {
	case tea.KeyDown:
		b.session.Down()
		return b, nil, searchOutcome{}
	case tea.KeyUp:
		b.session.Up()
		return b, nil, searchOutcome{}
	case tea.KeyEsc:
		if b.session.Visible() {
			b.session.Escape()
			return b, nil, searchOutcome{}
		}

		b.input.Blur()

		return b, nil, searchOutcome{left: true}
	case tea.KeyEnter:
		sel, ok := b.session.Enter()
		if !ok {
			// Enter without a highlight takes the first suggestion.
			sel, ok = b.session.Click(0)
		}

		if !ok {
			return b, nil, searchOutcome{}
		}

		return b, nil, searchOutcome{picked: &sel}
	}

	before := b.input.Value()

	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)

	if b.input.Value() == before {
		return b, cmd, searchOutcome{}
	}

	return b, tea.Batch(cmd, b.schedule(b.session.Type(b.input.Value()))), searchOutcome{}
}

func (b SearchBox) View() string {
	var sb strings.Builder

	sb.WriteString(b.input.View())

	switch {
	case b.session.Loading():
		sb.WriteString("\n" + faintStyle.Render("  Searching..."))
	case !b.session.Visible():
	case b.session.Err() != nil:
		sb.WriteString("\n" + errorStyle.Render("  "+errText(b.session.Err())))
	case len(b.session.Results()) == 0:
		sb.WriteString("\n" + faintStyle.Render("  No matches"))
	default:
		mark := func(s string) string { return markStyle.Render(s) }

		for i, s := range b.session.Results() {
			cursor := "  "
			if i == b.session.Cursor() {
				cursor = "> "
			}

			label := search.Highlight(s.Label(), b.session.Query(), mark)

			if s.Type == search.KindBrand {
				sb.WriteString(fmt.Sprintf("\n%s%s %s", cursor, label, faintStyle.Render("(brand)")))
				continue
			}

			sb.WriteString(fmt.Sprintf("\n%s%s  %s  %s", cursor, label,
				Money(s.Price, b.symbol), faintStyle.Render(fmt.Sprintf("stock %d", s.Stock))))
		}
	}

	return sb.String()
}
