package view

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillpad/internal/api"
	"github.com/MrJamesThe3rd/tillpad/internal/bill"
	"github.com/MrJamesThe3rd/tillpad/internal/format"
)

// apiTimeout bounds one user action, which may span several requests.
const apiTimeout = 30 * time.Second

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	markStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	panelStyle  = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)

func activeStyle(s string) string {
	return markStyle.Render(s)
}

// APICtx returns a context with a standard timeout for backend calls.
func APICtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), apiTimeout)
}

// Money formats an amount with the configured currency symbol.
func Money(v decimal.Decimal, symbol string) string {
	return format.CurrencyWith(v, symbol, 2)
}

var operationErrors = []error{
	bill.ErrCreateFailed,
	bill.ErrLoadFailed,
	bill.ErrSaveFailed,
	bill.ErrFinalizeFailed,
}

// errText is the message shown to the user for err.
func errText(err error) string {
	if err == nil {
		return ""
	}

	msg := api.Message(err)

	for _, op := range operationErrors {
		if errors.Is(err, op) && !strings.HasPrefix(msg, op.Error()) {
			return capitalize(op.Error()) + ": " + msg
		}
	}

	return capitalize(msg)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	r, size := utf8.DecodeRuneInString(s)

	return string(unicode.ToUpper(r)) + s[size:]
}
