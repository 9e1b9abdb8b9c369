package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptySelection = errors.New("no products selected")
	ErrUnknownAction  = errors.New("action is handled by the caller")
)

// Product is a row of the products admin table.
type Product struct {
	ID          int64           `json:"id"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity_in_stock"`
	MinStock    int             `json:"min_stock_level"`
	Deleted     bool            `json:"is_deleted"`
}

func (p Product) LowStock() bool {
	return p.Quantity < p.MinStock
}

// Values of ProductQuery.FilterType.
const (
	FilterLowStock   = "low_stock"
	FilterOutOfStock = "out_of_stock"
)

// PageSize is the number of products per page of the admin table.
const PageSize = 20

type ProductQuery struct {
	Search      string
	Category    string
	ViewDeleted bool
	Page        int
	FilterType  string
}

type ProductPage struct {
	Products      []Product `json:"products"`
	CurrentPage   int       `json:"current_page"`
	TotalPages    int       `json:"total_pages"`
	TotalProducts int       `json:"total_products"`
}

// PriceChange is one entry of a product's price log.
type PriceChange struct {
	ChangedAt time.Time       `json:"changed_at"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	Username  string          `json:"username"`
	Source    string          `json:"source"`
}

type QuantityUpdate struct {
	NewQuantity int    `json:"new_quantity"`
	IsLowStock  bool   `json:"is_low_stock"`
	Category    string `json:"category"`
	Message     string `json:"message,omitempty"`
}

//go:generate mockgen -source=service.go -destination=backend_mock.go -package=catalog
type Backend interface {
	ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error)
	DeleteProduct(ctx context.Context, id int64) error
	RestoreProduct(ctx context.Context, id int64) error
	BulkDelete(ctx context.Context, ids []int64) (int, error)
	UpdateQuantity(ctx context.Context, id int64, qty int) (*QuantityUpdate, error)
	UpdatePrice(ctx context.Context, id int64, qty int, price decimal.Decimal) error
	PriceHistory(ctx context.Context, id int64) ([]PriceChange, error)
}

type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

func (s *Service) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}

	page, err := s.backend.ListProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return page, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.backend.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}

	return nil
}

func (s *Service) Restore(ctx context.Context, id int64) error {
	if err := s.backend.RestoreProduct(ctx, id); err != nil {
		return fmt.Errorf("restoring product %d: %w", id, err)
	}

	return nil
}

// BulkDelete deletes every id in one request and returns how many the
// backend deleted.
func (s *Service) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}

	n, err := s.backend.BulkDelete(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk deleting %d products: %w", len(ids), err)
	}

	return n, nil
}

// Perform runs a context menu action that needs no further input.
func (s *Service) Perform(ctx context.Context, a Action, id int64) error {
	switch a {
	case ActionDelete:
		return s.Delete(ctx, id)
	case ActionRestore:
		return s.Restore(ctx, id)
	}

	return fmt.Errorf("%w: %s", ErrUnknownAction, a)
}

// SetQuantity sends an inline quantity edit. Input that is not a whole
// number, or is negative, is sent as 0.
func (s *Service) SetQuantity(ctx context.Context, id int64, raw string) (*QuantityUpdate, error) {
	qty := NormalizeQuantity(raw)

	res, err := s.backend.UpdateQuantity(ctx, id, qty)
	if err != nil {
		return nil, fmt.Errorf("updating quantity of product %d: %w", id, err)
	}

	return res, nil
}

func NormalizeQuantity(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 0 {
		return 0
	}

	return qty
}

func (s *Service) PriceHistory(ctx context.Context, id int64) ([]PriceChange, error) {
	history, err := s.backend.PriceHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading price history of product %d: %w", id, err)
	}

	return history, nil
}

// SavePriceAndQuantity validates the form and writes price and stock.
func (s *Service) SavePriceAndQuantity(ctx context.Context, id int64, form ProductForm) error {
	price, qty, err := form.Parse()
	if err != nil {
		return err
	}

	if err := s.backend.UpdatePrice(ctx, id, qty, price); err != nil {
		return fmt.Errorf("updating price of product %d: %w", id, err)
	}

	return nil
}
