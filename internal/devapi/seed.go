package devapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillpad/internal/bill"
	"github.com/MrJamesThe3rd/tillpad/internal/catalog"
)

// Seed fills s with a small catalog, a few clients and some price history.
func Seed(s *Store) {
	products := []catalog.Product{
		{ID: 1, Brand: "Asian Paints", Description: "Apex Exterior Emulsion 4L", Category: "Paint", Price: decimal.RequireFromString("1450.00"), Quantity: 24, MinStock: 5},
		{ID: 2, Brand: "Asian Paints", Description: "Tractor Emulsion 10L", Category: "Paint", Price: decimal.RequireFromString("2380.00"), Quantity: 3, MinStock: 5},
		{ID: 3, Brand: "Berger", Description: "Silk Glamor 1L", Category: "Paint", Price: decimal.RequireFromString("615.50"), Quantity: 40, MinStock: 10},
		{ID: 4, Brand: "Fevicol", Description: "SH Synthetic Adhesive 1kg", Category: "Adhesive", Price: decimal.RequireFromString("325.00"), Quantity: 0, MinStock: 8},
		{ID: 5, Brand: "Havells", Description: "LED Bulb 9W", Category: "Electrical", Price: decimal.RequireFromString("99.00"), Quantity: 150, MinStock: 30},
		{ID: 6, Brand: "Havells", Description: "Modular Switch 6A", Category: "Electrical", Price: decimal.RequireFromString("45.75"), Quantity: 80, MinStock: 20},
		{ID: 7, Brand: "Jaquar", Description: "Pillar Cock", Category: "Plumbing", Price: decimal.RequireFromString("1199.00"), Quantity: 6, MinStock: 4},
		{ID: 8, Brand: "Supreme", Description: "PVC Pipe 1in 3m", Category: "Plumbing", Price: decimal.RequireFromString("210.00"), Quantity: 60, MinStock: 15},
		{ID: 9, Brand: "Taparia", Description: "Screwdriver Set 6pc", Category: "Tools", Price: decimal.RequireFromString("385.00"), Quantity: 12, MinStock: 5},
		{ID: 10, Brand: "Stanley", Description: "Measuring Tape 5m", Category: "Tools", Price: decimal.RequireFromString("275.00"), Quantity: 2, MinStock: 5, Deleted: true},
	}

	for _, p := range products {
		s.AddProduct(p)
	}

	clients := []bill.Client{
		{ID: 1, Name: "Ravi Constructions", Phone: "9876543210", Email: "accounts@ravi.example"},
		{ID: 2, Name: "Meera Interiors", Phone: "9123456780", Email: "meera@interiors.example"},
		{ID: 3, Name: "Walk-in Customer", Phone: "0000000000"},
	}

	for _, c := range clients {
		s.AddClient(c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now().Add(-30 * 24 * time.Hour)
	s.history[1] = []catalog.PriceChange{
		{ChangedAt: at, OldPrice: decimal.RequireFromString("1380.00"), NewPrice: decimal.RequireFromString("1450.00"), Username: "admin", Source: "price list"},
	}
	s.history[3] = []catalog.PriceChange{
		{ChangedAt: at, OldPrice: decimal.RequireFromString("590.00"), NewPrice: decimal.RequireFromString("600.00"), Username: "admin", Source: "manual"},
		{ChangedAt: at.Add(7 * 24 * time.Hour), OldPrice: decimal.RequireFromString("600.00"), NewPrice: decimal.RequireFromString("615.50"), Username: "admin", Source: "price list"},
	}
}
