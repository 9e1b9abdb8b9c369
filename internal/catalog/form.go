package catalog

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrPriceInvalid       = errors.New("Price must be a positive number")
	ErrQuantityInvalid    = errors.New("Quantity must be 0 or greater")
	ErrDescriptionMissing = errors.New("Description is required")
)

// ProductForm holds the raw inputs of the product edit form.
type ProductForm struct {
	Description string
	Price       string
	Quantity    string
}

func ValidatePrice(raw string) error {
	p, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !p.IsPositive() {
		return ErrPriceInvalid
	}

	return nil
}

func ValidateQuantity(raw string) error {
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || q < 0 {
		return ErrQuantityInvalid
	}

	return nil
}

func ValidateDescription(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrDescriptionMissing
	}

	return nil
}

// Validate returns every failing field, joined.
func (f ProductForm) Validate() error {
	return errors.Join(
		ValidateDescription(f.Description),
		ValidatePrice(f.Price),
		ValidateQuantity(f.Quantity),
	)
}

// Parse validates the form and returns its price and quantity.
func (f ProductForm) Parse() (decimal.Decimal, int, error) {
	if err := f.Validate(); err != nil {
		return decimal.Zero, 0, err
	}

	price := decimal.RequireFromString(strings.TrimSpace(f.Price))
	qty, _ := strconv.Atoi(strings.TrimSpace(f.Quantity))

	return price, qty, nil
}
