package stocksheet

// Profile describes the column layout of a stock sheet.
// Adding a new layout is just adding a new Profile to the profiles slice.
type Profile struct {
	Name     string
	IDCols   []string
	QtyCols  []string
	PriceCol []string // empty when the layout carries no prices
}

func (p Profile) HasPrice() bool {
	return len(p.PriceCol) > 0
}

// profiles is the ordered list of layouts tried during detection.
// More specific profiles come first.
var profiles = []Profile{
	{
		Name:     "price list",
		IDCols:   []string{"product_id", "id"},
		QtyCols:  []string{"quantity", "qty", "quantity_in_stock"},
		PriceCol: []string{"unit_price", "price"},
	},
	{
		Name:    "stock take",
		IDCols:  []string{"product_id", "id"},
		QtyCols: []string{"quantity", "qty", "quantity_in_stock"},
	},
}

// columns maps lower-cased header names to their index.
type columns map[string]int

// find returns the index of the first alias present.
func (c columns) find(aliases []string) (int, bool) {
	for _, a := range aliases {
		if i, ok := c[a]; ok {
			return i, true
		}
	}

	return -1, false
}

func (c columns) matches(p *Profile) bool {
	if _, ok := c.find(p.IDCols); !ok {
		return false
	}

	if _, ok := c.find(p.QtyCols); !ok {
		return false
	}

	if p.HasPrice() {
		if _, ok := c.find(p.PriceCol); !ok {
			return false
		}
	}

	return true
}
