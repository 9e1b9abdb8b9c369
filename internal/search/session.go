// Package search drives the product suggestion box: debounced queries,
// sequence-checked results and keyboard/mouse selection.
package search

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillpad/internal/bill"
)

type Kind string

const (
	KindBrand   Kind = "brand"
	KindProduct Kind = "product"
)

// Suggestion is one entry of the landing search results.
type Suggestion struct {
	Type        Kind            `json:"type"`
	ID          int64           `json:"id,omitempty"`
	Brand       string          `json:"brand"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock,omitempty"`
	Category    string          `json:"category,omitempty"`
}

func (s Suggestion) Label() string {
	if s.Type == KindBrand {
		return s.Brand
	}

	return strings.TrimSpace(s.Brand + " " + s.Description)
}

// Product converts a product suggestion into the reference a bill line needs.
func (s Suggestion) Product() bill.Product {
	return bill.Product{
		ID:          s.ID,
		Brand:       s.Brand,
		Description: s.Description,
		UnitPrice:   s.Price,
		Stock:       s.Stock,
		Category:    s.Category,
	}
}

// Request is a query the UI should execute on behalf of a Session.
type Request struct {
	Seq   uint64
	Query string
}

// Session is the state of one suggestion box. It is not safe for concurrent
// use; the UI owns it and feeds it events in order.
//
// Two counters guard it. The tick is bumped on every keystroke and only the
// latest tick may fire a request after the debounce delay. The seq is bumped
// on every issued request and on every change of text, and only the result
// for the latest seq is shown.
type Session struct {
	minLen int

	query   string
	results []Suggestion
	cursor  int
	visible bool
	loading bool
	err     error

	tick uint64
	seq  uint64
}

func NewSession(minLen int) *Session {
	if minLen < 1 {
		minLen = 1
	}

	return &Session{minLen: minLen, cursor: -1}
}

// Type records a keystroke and returns the tag to pass to Fire once the
// debounce delay has passed. When the text changes the list is hidden and
// emptied until the next request for it resolves.
func (s *Session) Type(query string) uint64 {
	s.tick++
	prev := strings.TrimSpace(s.query)
	s.query = query

	q := strings.TrimSpace(query)
	if q != prev || utf8.RuneCountInString(q) < s.minLen {
		// Old results and anything still in flight belong to the old text.
		s.seq++
		s.hide()
		s.results = nil
		s.loading = false
		s.err = nil
	}

	return s.tick
}

// Fire turns a debounced keystroke into a request. It reports false when the
// tag was superseded by a later keystroke or the query is too short.
func (s *Session) Fire(tag uint64) (Request, bool) {
	if tag != s.tick {
		return Request{}, false
	}

	q := strings.TrimSpace(s.query)
	if utf8.RuneCountInString(q) < s.minLen {
		return Request{}, false
	}

	s.seq++
	s.loading = true

	return Request{Seq: s.seq, Query: q}, true
}

// Resolve applies the outcome of a request. Results for anything but the
// latest issued request are dropped and Resolve reports false.
func (s *Session) Resolve(seq uint64, results []Suggestion, err error) bool {
	if seq != s.seq {
		return false
	}

	s.loading = false
	s.err = err
	s.cursor = -1

	if err != nil {
		s.results = nil
		s.visible = true

		return true
	}

	s.results = results
	s.visible = true

	return true
}

// Down moves the highlight down, wrapping to the top.
func (s *Session) Down() {
	n := len(s.results)
	if !s.visible || n == 0 {
		return
	}

	s.cursor = (s.cursor + 1) % n
}

// Up moves the highlight up, wrapping to the bottom.
func (s *Session) Up() {
	n := len(s.results)
	if !s.visible || n == 0 {
		return
	}

	if s.cursor <= 0 {
		s.cursor = n - 1
		return
	}

	s.cursor--
}

// Enter commits the highlighted suggestion.
func (s *Session) Enter() (Suggestion, bool) {
	if !s.visible || s.cursor < 0 {
		return Suggestion{}, false
	}

	return s.commit(s.cursor)
}

// Click commits suggestion i.
func (s *Session) Click(i int) (Suggestion, bool) {
	if !s.visible || i < 0 || i >= len(s.results) {
		return Suggestion{}, false
	}

	return s.commit(i)
}

func (s *Session) Escape() {
	s.hide()
}

// Reset clears the box after a selection has been used.
func (s *Session) Reset() {
	s.Type("")
	s.query = ""
}

func (s *Session) commit(i int) (Suggestion, bool) {
	sel := s.results[i]
	s.hide()

	return sel, true
}

func (s *Session) hide() {
	s.visible = false
	s.cursor = -1
}

func (s *Session) Query() string { return s.query }

func (s *Session) Results() []Suggestion { return s.results }

func (s *Session) Cursor() int { return s.cursor }

func (s *Session) Visible() bool { return s.visible }

func (s *Session) Loading() bool { return s.loading }

func (s *Session) Err() error { return s.err }

// Latest is the sequence number of the last issued request.
func (s *Session) Latest() uint64 { return s.seq }

func (s *Session) Highlighted() (Suggestion, bool) {
	if !s.visible || s.cursor < 0 {
		return Suggestion{}, false
	}

	return s.results[s.cursor], true
}

// Highlight wraps every case-insensitive occurrence of query in text with mark.
func Highlight(text, query string, mark func(string) string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return text
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return text
	}

	return re.ReplaceAllStringFunc(text, mark)
}

type Source interface {
	Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error)
}

// Result is the outcome of executing a Request.
type Result struct {
	Seq         uint64
	Suggestions []Suggestion
	Err         error
}

// Searcher executes session requests against a Source.
type Searcher struct {
	Source Source
	Limit  int
}

func (s Searcher) Search(ctx context.Context, req Request) Result {
	res, err := s.Source.Suggest(ctx, req.Query, s.Limit)
	if err == nil && s.Limit > 0 && len(res) > s.Limit {
		res = res[:s.Limit]
	}

	return Result{Seq: req.Seq, Suggestions: res, Err: err}
}
