package devapi_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tillpad/internal/bill"
	"github.com/MrJamesThe3rd/tillpad/internal/catalog"
	"github.com/MrJamesThe3rd/tillpad/internal/devapi"
	"github.com/MrJamesThe3rd/tillpad/internal/search"
)

// tickingClock advances one minute per call.
func tickingClock() func() time.Time {
	t := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newSeededStore(t *testing.T) *devapi.Store {
	t.Helper()

	s := devapi.NewStore(devapi.WithClock(tickingClock()))
	devapi.Seed(s)

	return s
}

func TestStore_CreateBill(t *testing.T) {
	s := newSeededStore(t)

	created, err := s.CreateBill(bill.CreateParams{ClientID: new(int64(1))})
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Regexp(t, `^TEMP-20260314-[0-9A-F]{8}$`, created.Number)

	b, err := s.Bill(created.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusDraft, b.Status)
	assert.NotNil(t, b.Items)

	_, err = s.CreateBill(bill.CreateParams{ClientID: new(int64(99))})
	assert.ErrorIs(t, err, devapi.ErrNotFound)
}

func TestStore_SaveBill(t *testing.T) {
	s := newSeededStore(t)

	created, err := s.CreateBill(bill.CreateParams{})
	require.NoError(t, err)

	tmp := bill.NewTemporaryID()

	saved, err := s.SaveBill(created.ID, bill.Snapshot{
		Items: []bill.LineItem{
			{ID: tmp, ProductID: 5, ProductName: "Havells LED Bulb 9W", UnitPrice: decimal.RequireFromString("90"), Quantity: 2},
			{ID: bill.NewTemporaryID(), ProductID: 6, ProductName: "Havells Modular Switch 6A", UnitPrice: decimal.RequireFromString("45.75"), Quantity: 1},
		},
		Discount: &bill.Discount{Kind: bill.KindFixed, Value: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)
	require.Len(t, saved.Items, 2)

	first := saved.Items[0].ID
	assert.False(t, first.Temporary())
	assert.NotEqual(t, first, saved.Items[1].ID)
	assert.True(t, decimal.RequireFromString("90").Equal(saved.Items[0].UnitPrice), "captured price is kept")
	require.NotNil(t, saved.Discount)

	again, err := s.SaveBill(created.ID, saved.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, first, again.Items[0].ID, "backend ids are stable across saves")

	_, err = s.SaveBill(created.ID, bill.Snapshot{Items: []bill.LineItem{{ProductID: 5, Quantity: 0}}})
	assert.ErrorIs(t, err, devapi.ErrInvalid)

	_, err = s.SaveBill(created.ID, bill.Snapshot{Items: []bill.LineItem{{ProductID: 404, Quantity: 1}}})
	assert.ErrorIs(t, err, devapi.ErrNotFound)

	_, err = s.SaveBill(42, bill.Snapshot{})
	assert.ErrorIs(t, err, devapi.ErrNotFound)
}

func TestStore_ItemOperations(t *testing.T) {
	s := newSeededStore(t)

	created, err := s.CreateBill(bill.CreateParams{})
	require.NoError(t, err)

	b, err := s.AddItem(created.ID, 3, 2)
	require.NoError(t, err)

	b, err = s.AddItem(created.ID, 3, 1)
	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.Equal(t, 3, b.Items[0].Quantity)
	assert.Equal(t, "Berger Silk Glamor 1L", b.Items[0].ProductName)

	id := b.Items[0].ID

	b, err = s.UpdateItem(created.ID, id, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, b.Items[0].Quantity)

	_, err = s.UpdateItem(created.ID, id, 0)
	assert.ErrorIs(t, err, devapi.ErrInvalid)

	_, err = s.UpdateItem(created.ID, "missing", 1)
	assert.ErrorIs(t, err, devapi.ErrNotFound)

	_, err = s.AddItem(created.ID, 10, 1)
	assert.ErrorIs(t, err, devapi.ErrNotFound, "deleted products cannot be billed")

	b, err = s.RemoveItem(created.ID, id)
	require.NoError(t, err)
	assert.Empty(t, b.Items)
}

func TestStore_Adjustments(t *testing.T) {
	s := newSeededStore(t)

	created, err := s.CreateBill(bill.CreateParams{})
	require.NoError(t, err)

	b, err := s.SetTax(created.ID, &bill.Tax{Kind: bill.KindPercentage, Value: decimal.NewFromInt(18)})
	require.NoError(t, err)
	require.NotNil(t, b.Tax)
	assert.Equal(t, "Tax", b.Tax.Name)

	_, err = s.SetDiscount(created.ID, &bill.Discount{Kind: "bogus", Value: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, devapi.ErrInvalid)

	b, err = s.SetTax(created.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, b.Tax)
}

func TestStore_Finalize(t *testing.T) {
	s := newSeededStore(t)

	created, err := s.CreateBill(bill.CreateParams{})
	require.NoError(t, err)

	_, err = s.Finalize(created.ID)
	assert.ErrorIs(t, err, devapi.ErrInvalid, "empty bills cannot be finalized")

	_, err = s.AddItem(created.ID, 5, 10)
	require.NoError(t, err)

	_, err = s.SetDiscount(created.ID, &bill.Discount{Kind: bill.KindPercentage, Value: decimal.NewFromInt(10)})
	require.NoError(t, err)

	b, err := s.Finalize(created.ID)
	require.NoError(t, err)

	assert.Equal(t, bill.StatusFinalized, b.Status)
	require.NotNil(t, b.Totals)
	assert.Equal(t, "990.00", b.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "891.00", b.Totals.Total.StringFixed(2))

	_, err = s.AddItem(created.ID, 5, 1)
	assert.ErrorIs(t, err, devapi.ErrFinalized)

	_, err = s.Finalize(created.ID)
	assert.ErrorIs(t, err, devapi.ErrFinalized)

	assert.Empty(t, s.ActiveBills(), "finalized bills are not active")
}

func TestStore_ActiveBills(t *testing.T) {
	s := newSeededStore(t)

	first, err := s.CreateBill(bill.CreateParams{ClientID: new(int64(2))})
	require.NoError(t, err)

	second, err := s.CreateBill(bill.CreateParams{})
	require.NoError(t, err)

	_, err = s.AddItem(first.ID, 9, 2)
	require.NoError(t, err)

	active := s.ActiveBills()
	require.Len(t, active, 2)

	assert.Equal(t, first.ID, active[0].ID, "most recently changed first")
	assert.Equal(t, "Meera Interiors", active[0].ClientName)
	assert.Equal(t, 1, active[0].ItemCount)
	assert.Equal(t, "770.00", active[0].Total.StringFixed(2))
	assert.Equal(t, second.ID, active[1].ID)
}

func TestStore_QuickAdd(t *testing.T) {
	s := newSeededStore(t)

	id, err := s.QuickAdd(nil, 1, 1)
	require.NoError(t, err)

	again, err := s.QuickAdd(&id, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	b, err := s.Bill(id)
	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.Equal(t, 3, b.Items[0].Quantity)

	_, err = s.QuickAdd(nil, 404, 1)
	assert.ErrorIs(t, err, devapi.ErrNotFound)
	assert.Len(t, s.ActiveBills(), 1, "a failed quick add leaves no bill behind")
}

func TestStore_Suggest(t *testing.T) {
	s := newSeededStore(t)

	got := s.Suggest("havells", 10)
	require.Len(t, got, 3)

	assert.Equal(t, search.KindBrand, got[0].Type)
	assert.Equal(t, "Havells", got[0].Brand)
	assert.Equal(t, search.KindProduct, got[1].Type)
	assert.Equal(t, int64(5), got[1].ID)

	assert.Len(t, s.Suggest("havells", 2), 2)
	assert.Empty(t, s.Suggest("stanley", 10), "deleted products are not suggested")
	assert.Empty(t, s.Suggest("  ", 10))
}

func TestStore_Products(t *testing.T) {
	s := newSeededStore(t)

	type testCase struct {
		name  string
		query catalog.ProductQuery
		want  []int64
	}

	tests := []testCase{
		{
			name:  "live products",
			query: catalog.ProductQuery{},
			want:  []int64{1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
		{
			name:  "deleted view",
			query: catalog.ProductQuery{ViewDeleted: true},
			want:  []int64{10},
		},
		{
			name:  "search and category",
			query: catalog.ProductQuery{Search: "emulsion", Category: "paint"},
			want:  []int64{1, 2},
		},
		{
			name:  "low stock",
			query: catalog.ProductQuery{FilterType: catalog.FilterLowStock},
			want:  []int64{2, 4},
		},
		{
			name:  "out of stock",
			query: catalog.ProductQuery{FilterType: catalog.FilterOutOfStock},
			want:  []int64{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := s.Products(tt.query)

			var ids []int64
			for _, p := range page.Products {
				ids = append(ids, p.ID)
			}

			assert.Equal(t, tt.want, ids)
			assert.Equal(t, 1, page.CurrentPage)
			assert.Equal(t, 1, page.TotalPages)
			assert.Equal(t, len(tt.want), page.TotalProducts)
		})
	}
}

func TestStore_ProductPaging(t *testing.T) {
	s := devapi.NewStore()

	for i := range 45 {
		s.AddProduct(catalog.Product{ID: int64(i + 1), Brand: "Brand", Description: "Item", Price: decimal.NewFromInt(1)})
	}

	page := s.Products(catalog.ProductQuery{Page: 3})
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.CurrentPage)
	require.Len(t, page.Products, 5)
	assert.Equal(t, int64(41), page.Products[0].ID)

	page = s.Products(catalog.ProductQuery{Page: 9})
	assert.Equal(t, 3, page.CurrentPage, "page is clamped to the last one")
}

func TestStore_ProductUpdates(t *testing.T) {
	s := newSeededStore(t)

	upd, err := s.UpdateQuantity(6, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, upd.NewQuantity)
	assert.True(t, upd.IsLowStock)
	assert.Equal(t, "Electrical", upd.Category)

	_, err = s.UpdateQuantity(6, -1)
	assert.ErrorIs(t, err, devapi.ErrInvalid)

	require.NoError(t, s.UpdatePrice(3, 40, decimal.RequireFromString("640"), "admin"))

	log, err := s.PriceHistory(3)
	require.NoError(t, err)
	require.Len(t, log, 3)
	assert.Equal(t, "640", log[0].NewPrice.String(), "newest first")
	assert.Equal(t, "615.5", log[0].OldPrice.String())

	require.NoError(t, s.UpdatePrice(3, 41, decimal.RequireFromString("640"), "admin"))

	log, err = s.PriceHistory(3)
	require.NoError(t, err)
	assert.Len(t, log, 3, "unchanged price is not logged")

	assert.ErrorIs(t, s.UpdatePrice(3, 1, decimal.Zero, "admin"), devapi.ErrInvalid)

	_, err = s.PriceHistory(404)
	assert.ErrorIs(t, err, devapi.ErrNotFound)
}

func TestStore_DeleteRestore(t *testing.T) {
	s := newSeededStore(t)

	require.NoError(t, s.DeleteProduct(1))
	assert.Equal(t, 2, s.BulkDelete([]int64{1, 2, 3, 404}))

	page := s.Products(catalog.ProductQuery{ViewDeleted: true})
	assert.Equal(t, 4, page.TotalProducts)

	require.NoError(t, s.RestoreProduct(10))
	assert.ErrorIs(t, s.RestoreProduct(404), devapi.ErrNotFound)
}

func TestStore_Clients(t *testing.T) {
	s := newSeededStore(t)

	got := s.SearchClients("mee")
	require.Len(t, got, 1)
	assert.Equal(t, "Meera Interiors", got[0].Name)

	assert.Len(t, s.SearchClients("98765"), 1)
	assert.Empty(t, s.SearchClients("nobody"))

	c, err := s.Client(3)
	require.NoError(t, err)
	assert.Equal(t, "Walk-in Customer", c.Name)

	_, err = s.Client(404)
	assert.ErrorIs(t, err, devapi.ErrNotFound)
}
