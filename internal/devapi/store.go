// Package devapi is an in-memory stand-in for the shop backend. It speaks the
// HTTP contract of package api so the terminal UI can run locally.
package devapi

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillpad/internal/bill"
	"github.com/MrJamesThe3rd/tillpad/internal/catalog"
	"github.com/MrJamesThe3rd/tillpad/internal/search"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrFinalized = errors.New("bill is finalized")
	ErrInvalid   = errors.New("invalid request")
)

// BillSummary is a row of the active bills list.
type BillSummary struct {
	ID         int64           `json:"id"`
	Number     string          `json:"bill_number"`
	ClientName string          `json:"client_name"`
	ItemCount  int             `json:"item_count"`
	Total      decimal.Decimal `json:"total"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type draft struct {
	bill    bill.Bill
	updated time.Time
}

// Store holds the catalog, clients and bills of the development backend.
type Store struct {
	mu sync.Mutex

	products map[int64]*catalog.Product
	history  map[int64][]catalog.PriceChange
	clients  map[int64]bill.Client
	bills    map[int64]*draft

	nextBill int64
	nextItem int64

	now func() time.Time
}

type StoreOption func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		products: make(map[int64]*catalog.Product),
		history:  make(map[int64][]catalog.PriceChange),
		clients:  make(map[int64]bill.Client),
		bills:    make(map[int64]*draft),
		nextBill: 1,
		nextItem: 1,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) AddProduct(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[p.ID] = new(p)
}

func (s *Store) AddClient(c bill.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.ID] = c
}

func (s *Store) billNumber() string {
	return "TEMP-" + s.now().Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *Store) CreateBill(params bill.CreateParams) (bill.Created, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkClient(params.ClientID); err != nil {
		return bill.Created{}, err
	}

	b := s.newDraft(params.ClientID)

	return bill.Created{ID: b.ID, Number: b.Number}, nil
}

func (s *Store) newDraft(clientID *int64) *bill.Bill {
	now := s.now()

	d := &draft{
		bill: bill.Bill{
			ID:        s.nextBill,
			Number:    s.billNumber(),
			ClientID:  clientID,
			Items:     []bill.LineItem{},
			Status:    bill.StatusDraft,
			CreatedAt: now,
		},
		updated: now,
	}

	s.bills[d.bill.ID] = d
	s.nextBill++

	return &d.bill
}

func (s *Store) checkClient(id *int64) error {
	if id == nil {
		return nil
	}

	if _, ok := s.clients[*id]; !ok {
		return fmt.Errorf("client %d: %w", *id, ErrNotFound)
	}

	return nil
}

func (s *Store) Bill(id int64) (bill.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.bills[id]
	if !ok {
		return bill.Bill{}, fmt.Errorf("bill %d: %w", id, ErrNotFound)
	}

	return d.bill.Clone(), nil
}

// edit runs fn on a draft bill and returns the result.
func (s *Store) edit(id int64, fn func(b *bill.Bill) error) (bill.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.bills[id]
	if !ok {
		return bill.Bill{}, fmt.Errorf("bill %d: %w", id, ErrNotFound)
	}

	if d.bill.Status == bill.StatusFinalized {
		return bill.Bill{}, fmt.Errorf("bill %d: %w", id, ErrFinalized)
	}

	work := d.bill.Clone()
	if err := fn(&work); err != nil {
		return bill.Bill{}, err
	}

	d.bill = work
	d.updated = s.now()

	return work.Clone(), nil
}

// SaveBill replaces the editable state of a bill. Lines without a backend id
// are given one.
func (s *Store) SaveBill(id int64, snap bill.Snapshot) (bill.Bill, error) {
	return s.edit(id, func(b *bill.Bill) error {
		if err := s.checkClient(snap.ClientID); err != nil {
			return err
		}

		if err := checkAdjustments(snap.Discount, snap.Tax); err != nil {
			return err
		}

		items := make([]bill.LineItem, 0, len(snap.Items))

		for _, it := range snap.Items {
			if it.Quantity <= 0 {
				return fmt.Errorf("item %s: quantity must be positive: %w", it.ID, ErrInvalid)
			}

			if _, ok := s.products[it.ProductID]; !ok {
				return fmt.Errorf("product %d: %w", it.ProductID, ErrNotFound)
			}

			if it.ID == "" || it.ID.Temporary() {
				it.ID = s.itemID()
			}

			items = append(items, it)
		}

		b.ClientID = snap.ClientID
		b.Items = items
		b.Discount = snap.Discount
		b.Tax = snap.Tax

		return nil
	})
}

func checkAdjustments(d *bill.Discount, t *bill.Tax) error {
	if d != nil && (d.Value.IsNegative() || !validKind(d.Kind)) {
		return fmt.Errorf("discount: %w", ErrInvalid)
	}

	if t != nil && (t.Value.IsNegative() || !validKind(t.Kind)) {
		return fmt.Errorf("tax: %w", ErrInvalid)
	}

	return nil
}

func validKind(k bill.Kind) bool {
	return k == bill.KindPercentage || k == bill.KindFixed
}

func (s *Store) itemID() bill.ItemID {
	id := bill.ItemID(strconv.FormatInt(s.nextItem, 10))
	s.nextItem++

	return id
}

// AddItem adds qty of a product to a bill, merging with an existing line.
func (s *Store) AddItem(id, productID int64, qty int) (bill.Bill, error) {
	return s.edit(id, func(b *bill.Bill) error {
		return s.addLine(b, productID, qty)
	})
}

func (s *Store) addLine(b *bill.Bill, productID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive: %w", ErrInvalid)
	}

	p, ok := s.products[productID]
	if !ok || p.Deleted {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}

	for i := range b.Items {
		if b.Items[i].ProductID == productID {
			b.Items[i].Quantity += qty
			return nil
		}
	}

	b.Items = append(b.Items, bill.LineItem{
		ID:          s.itemID(),
		ProductID:   p.ID,
		ProductName: productName(p),
		UnitPrice:   p.Price,
		Quantity:    qty,
	})

	return nil
}

func productName(p *catalog.Product) string {
	return bill.Product{Brand: p.Brand, Description: p.Description}.Name()
}

func (s *Store) UpdateItem(id int64, itemID bill.ItemID, qty int) (bill.Bill, error) {
	return s.edit(id, func(b *bill.Bill) error {
		if qty <= 0 {
			return fmt.Errorf("quantity must be positive: %w", ErrInvalid)
		}

		i := slices.IndexFunc(b.Items, func(it bill.LineItem) bool { return it.ID == itemID })
		if i < 0 {
			return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}

		b.Items[i].Quantity = qty

		return nil
	})
}

func (s *Store) RemoveItem(id int64, itemID bill.ItemID) (bill.Bill, error) {
	return s.edit(id, func(b *bill.Bill) error {
		i := slices.IndexFunc(b.Items, func(it bill.LineItem) bool { return it.ID == itemID })
		if i < 0 {
			return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}

		b.Items = slices.Delete(b.Items, i, i+1)

		return nil
	})
}

// SetDiscount sets or, with nil, clears the discount.
func (s *Store) SetDiscount(id int64, d *bill.Discount) (bill.Bill, error) {
	return s.edit(id, func(b *bill.Bill) error {
		if err := checkAdjustments(d, nil); err != nil {
			return err
		}

		b.Discount = d

		return nil
	})
}

// SetTax sets or, with nil, clears the tax.
func (s *Store) SetTax(id int64, t *bill.Tax) (bill.Bill, error) {
	return s.edit(id, func(b *bill.Bill) error {
		if err := checkAdjustments(nil, t); err != nil {
			return err
		}

		if t != nil && t.Name == "" {
			t.Name = "Tax"
		}

		b.Tax = t

		return nil
	})
}

// Finalize computes the totals and freezes the bill.
func (s *Store) Finalize(id int64) (bill.Bill, error) {
	return s.edit(id, func(b *bill.Bill) error {
		if len(b.Items) == 0 {
			return fmt.Errorf("bill has no items: %w", ErrInvalid)
		}

		b.Totals = new(bill.Compute(b.Items, b.Discount, b.Tax))
		b.Status = bill.StatusFinalized

		return nil
	})
}

// ActiveBills lists draft bills, most recently changed first.
func (s *Store) ActiveBills() []BillSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]BillSummary, 0, len(s.bills))

	for _, d := range s.bills {
		if d.bill.Status != bill.StatusDraft {
			continue
		}

		sum := BillSummary{
			ID:        d.bill.ID,
			Number:    d.bill.Number,
			ItemCount: len(d.bill.Items),
			Total:     bill.Compute(d.bill.Items, d.bill.Discount, d.bill.Tax).Total,
			UpdatedAt: d.updated,
		}

		if d.bill.ClientID != nil {
			sum.ClientName = s.clients[*d.bill.ClientID].Name
		}

		out = append(out, sum)
	}

	slices.SortFunc(out, func(a, b BillSummary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}

		return cmp.Compare(b.ID, a.ID)
	})

	return out
}

// QuickAdd adds a product to billID, creating a bill when billID is nil.
func (s *Store) QuickAdd(billID *int64, productID int64, qty int) (int64, error) {
	if billID != nil {
		b, err := s.AddItem(*billID, productID, qty)
		if err != nil {
			return 0, err
		}

		return b.ID, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.products[productID]; !ok || p.Deleted {
		return 0, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}

	b := s.newDraft(nil)
	if err := s.addLine(b, productID, qty); err != nil {
		delete(s.bills, b.ID)
		return 0, err
	}

	return b.ID, nil
}

func (s *Store) SearchClients(q string) []bill.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	q = strings.ToLower(strings.TrimSpace(q))
	out := []bill.Client{}

	for _, c := range s.clients {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(c.Phone, q) {
			out = append(out, c)
		}
	}

	slices.SortFunc(out, func(a, b bill.Client) int { return cmp.Compare(a.ID, b.ID) })

	return out
}

func (s *Store) Client(id int64) (bill.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return bill.Client{}, fmt.Errorf("client %d: %w", id, ErrNotFound)
	}

	return c, nil
}

// Suggest returns matching brands first, then matching products.
func (s *Store) Suggest(q string, limit int) []search.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	q = strings.ToLower(strings.TrimSpace(q))
	out := []search.Suggestion{}

	if q == "" {
		return out
	}

	products := s.sortedProducts()
	brands := map[string]bool{}

	for _, p := range products {
		if p.Deleted || brands[p.Brand] || !strings.Contains(strings.ToLower(p.Brand), q) {
			continue
		}

		brands[p.Brand] = true
		out = append(out, search.Suggestion{Type: search.KindBrand, Brand: p.Brand})
	}

	for _, p := range products {
		if p.Deleted {
			continue
		}

		text := strings.ToLower(p.Brand + " " + p.Description)
		if !strings.Contains(text, q) {
			continue
		}

		out = append(out, search.Suggestion{
			Type:        search.KindProduct,
			ID:          p.ID,
			Brand:       p.Brand,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Quantity,
			Category:    p.Category,
		})
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}

func (s *Store) sortedProducts() []catalog.Product {
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}

	slices.SortFunc(out, func(a, b catalog.Product) int { return cmp.Compare(a.ID, b.ID) })

	return out
}

func (s *Store) Products(q catalog.ProductQuery) catalog.ProductPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(q.Search))
	matched := []catalog.Product{}

	for _, p := range s.sortedProducts() {
		if p.Deleted != q.ViewDeleted {
			continue
		}

		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			continue
		}

		if term != "" && !strings.Contains(strings.ToLower(p.Brand+" "+p.Description), term) {
			continue
		}

		switch q.FilterType {
		case catalog.FilterLowStock:
			if !p.LowStock() {
				continue
			}
		case catalog.FilterOutOfStock:
			if p.Quantity > 0 {
				continue
			}
		}

		matched = append(matched, p)
	}

	pages := max(1, (len(matched)+catalog.PageSize-1)/catalog.PageSize)
	page := min(max(1, q.Page), pages)

	start := (page - 1) * catalog.PageSize
	end := min(start+catalog.PageSize, len(matched))

	return catalog.ProductPage{
		Products:      matched[start:end],
		CurrentPage:   page,
		TotalPages:    pages,
		TotalProducts: len(matched),
	}
}

func (s *Store) setDeleted(id int64, deleted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	p.Deleted = deleted

	return nil
}

func (s *Store) DeleteProduct(id int64) error {
	return s.setDeleted(id, true)
}

func (s *Store) RestoreProduct(id int64) error {
	return s.setDeleted(id, false)
}

// BulkDelete deletes the known, live products among ids and returns how many.
func (s *Store) BulkDelete(ids []int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0

	for _, id := range ids {
		if p, ok := s.products[id]; ok && !p.Deleted {
			p.Deleted = true
			n++
		}
	}

	return n
}

func (s *Store) UpdateQuantity(id int64, qty int) (catalog.QuantityUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.QuantityUpdate{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	if qty < 0 {
		return catalog.QuantityUpdate{}, fmt.Errorf("quantity must be 0 or greater: %w", ErrInvalid)
	}

	p.Quantity = qty

	return catalog.QuantityUpdate{
		NewQuantity: qty,
		IsLowStock:  p.LowStock(),
		Category:    p.Category,
		Message:     "Quantity updated",
	}, nil
}

// UpdatePrice sets quantity and price, logging the price change.
func (s *Store) UpdatePrice(id int64, qty int, price decimal.Decimal, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	if qty < 0 || !price.IsPositive() {
		return fmt.Errorf("price must be positive and quantity 0 or greater: %w", ErrInvalid)
	}

	if !p.Price.Equal(price) {
		s.history[id] = append(s.history[id], catalog.PriceChange{
			ChangedAt: s.now(),
			OldPrice:  p.Price,
			NewPrice:  price,
			Username:  user,
			Source:    "manual",
		})
	}

	p.Price = price
	p.Quantity = qty

	return nil
}

// PriceHistory returns the price log of a product, newest first.
func (s *Store) PriceHistory(id int64) ([]catalog.PriceChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	log := s.history[id]
	out := make([]catalog.PriceChange, len(log))

	for i, c := range log {
		out[len(log)-1-i] = c
	}

	return out, nil
}
