package stocksheet

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillpad/internal/catalog"
)

//go:generate mockgen -source=service.go -destination=backend_mock.go -package=stocksheet
type Backend interface {
	UpdateQuantity(ctx context.Context, id int64, qty int) (*catalog.QuantityUpdate, error)
	UpdatePrice(ctx context.Context, id int64, qty int, price decimal.Decimal) error
}

type RowError struct {
	Row Row
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d (product %d): %v", e.Row.Line, e.Row.ProductID, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Result summarises an Apply run.
type Result struct {
	Applied  []Row
	Skipped  []Row
	Failed   []RowError
	LowStock []int64
}

type Service struct {
	backend Backend
	logger  *slog.Logger
}

func NewService(backend Backend, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{backend: backend, logger: logger}
}

func (s *Service) Parse(r io.Reader) (*Sheet, error) {
	return Parse(r)
}

// Apply sends every approved row to the backend, one request per row.
// Row failures are collected in the result; only a cancelled context stops
// the run early.
func (s *Service) Apply(ctx context.Context, rows []Row, approve func(Row) bool) (*Result, error) {
	res := &Result{}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if approve != nil && !approve(row) {
			res.Skipped = append(res.Skipped, row)
			continue
		}

		if err := s.applyRow(ctx, row, res); err != nil {
			s.logger.Warn("stock sheet row failed", "line", row.Line, "product_id", row.ProductID, "error", err)
			res.Failed = append(res.Failed, RowError{Row: row, Err: err})

			continue
		}

		res.Applied = append(res.Applied, row)
	}

	return res, nil
}

func (s *Service) applyRow(ctx context.Context, row Row, res *Result) error {
	if row.Price != nil {
		return s.backend.UpdatePrice(ctx, row.ProductID, row.Quantity, *row.Price)
	}

	upd, err := s.backend.UpdateQuantity(ctx, row.ProductID, row.Quantity)
	if err != nil {
		return err
	}

	if upd != nil && upd.IsLowStock {
		res.LowStock = append(res.LowStock, row.ProductID)
	}

	return nil
}
