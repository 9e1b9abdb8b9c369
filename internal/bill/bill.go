package bill

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind tells how a discount or tax value is applied to the subtotal.
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

// Status is the backend lifecycle status of a bill.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusFinalized Status = "finalized"
)

const temporaryPrefix = "tmp-"

// ItemID identifies a line item. Lines added locally carry a temporary id
// until the first successful save assigns the backend one.
type ItemID string

func NewTemporaryID() ItemID {
	return ItemID(temporaryPrefix + uuid.NewString())
}

func (id ItemID) Temporary() bool {
	return strings.HasPrefix(string(id), temporaryPrefix)
}

// UnmarshalJSON accepts both numeric and string ids.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*id = ItemID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*id = ItemID(n.String())

	return nil
}

// LineItem is one product/quantity pairing within a bill.
//
// UnitPrice is captured from the product when the line is added and is never
// re-fetched; later catalog price changes do not touch existing lines.
type LineItem struct {
	ID          ItemID          `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Discount struct {
	Kind  Kind            `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type Tax struct {
	Name  string          `json:"name"`
	Kind  Kind            `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Taxable  decimal.Decimal `json:"taxable"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Bill is a draft or finalized invoice. ID is zero until the backend has
// created it. Totals is only set by the backend on finalized bills.
type Bill struct {
	ID        int64      `json:"id"`
	Number    string     `json:"bill_number"`
	ClientID  *int64     `json:"client_id"`
	Items     []LineItem `json:"items"`
	Discount  *Discount  `json:"discount"`
	Tax       *Tax       `json:"tax"`
	Status    Status     `json:"status"`
	Totals    *Totals    `json:"totals,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Clone returns a deep copy that shares nothing with b.
func (b Bill) Clone() Bill {
	out := b

	if b.ClientID != nil {
		out.ClientID = new(*b.ClientID)
	}

	if b.Items != nil {
		out.Items = make([]LineItem, len(b.Items))
		copy(out.Items, b.Items)
	}

	if b.Discount != nil {
		out.Discount = new(*b.Discount)
	}

	if b.Tax != nil {
		out.Tax = new(*b.Tax)
	}

	if b.Totals != nil {
		out.Totals = new(*b.Totals)
	}

	return out
}

// Snapshot returns the part of the bill the backend persists on save.
func (b Bill) Snapshot() Snapshot {
	c := b.Clone()

	return Snapshot{
		ClientID: c.ClientID,
		Items:    c.Items,
		Discount: c.Discount,
		Tax:      c.Tax,
	}
}

// Snapshot is the full editable state written by a save.
type Snapshot struct {
	ClientID *int64     `json:"client_id"`
	Items    []LineItem `json:"items"`
	Discount *Discount  `json:"discount"`
	Tax      *Tax       `json:"tax"`
}

type Product struct {
	ID          int64           `json:"id"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
}

// Name is the display name used on bill lines.
func (p Product) Name() string {
	switch {
	case p.Brand == "":
		return p.Description
	case p.Description == "":
		return p.Brand
	}

	return p.Brand + " " + p.Description
}

type Client struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type CreateParams struct {
	ClientID   *int64 `json:"client_id"`
	TemplateID *int64 `json:"template_id"`
}

// Created is what the backend returns for a new bill.
type Created struct {
	ID     int64  `json:"bill_id"`
	Number string `json:"bill_number"`
}
