package stocksheet_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/tillpad/internal/encoding"
	"github.com/MrJamesThe3rd/tillpad/internal/stocksheet"
)

func TestParse_PriceList(t *testing.T) {
	csv := `Sharma Electricals - price revision
Supplier;Havells India
Date;15-10-2026

Product_ID;Description;Quantity;Unit_Price
12;Wire 1.5mm 90m;40;1.234,50
13;MCB 32A;5;₹ 480,00

14;Switch;0;
`

	sheet, err := stocksheet.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "price list", sheet.Profile)
	assert.Equal(t, encoding.UTF8, sheet.Charset)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, int64(12), sheet.Rows[0].ProductID)
	assert.Equal(t, 40, sheet.Rows[0].Quantity)
	require.NotNil(t, sheet.Rows[0].Price)
	assert.Equal(t, "1234.5", sheet.Rows[0].Price.String())
	assert.Equal(t, 6, sheet.Rows[0].Line)

	require.NotNil(t, sheet.Rows[1].Price)
	assert.Equal(t, "480", sheet.Rows[1].Price.String())

	// An empty price cell turns the row into a quantity update.
	assert.Nil(t, sheet.Rows[2].Price)
	assert.Equal(t, 9, sheet.Rows[2].Line)
}

func TestParse_StockTakeCommaSeparated(t *testing.T) {
	csv := "id,qty,notes\n1,10,shelf A\n2,0,\n"

	sheet, err := stocksheet.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "stock take", sheet.Profile)
	require.Len(t, sheet.Rows, 2)
	assert.Nil(t, sheet.Rows[0].Price)
	assert.Equal(t, 10, sheet.Rows[0].Quantity)
	assert.Equal(t, 0, sheet.Rows[1].Quantity)
}

func TestParse_QuotedDotDecimal(t *testing.T) {
	csv := "product_id,quantity,price\n3,1,\"1,234.50\"\n"

	sheet, err := stocksheet.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "1234.5", sheet.Rows[0].Price.String())
}

func TestParse_Windows1252(t *testing.T) {
	csv := "product_id;description;quantity\n5;Crème light;3\n"

	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(csv))
	require.NoError(t, err)

	sheet, err := stocksheet.Parse(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, int64(5), sheet.Rows[0].ProductID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{name: "NoHeader", csv: "a;b\n1;2\n", wantErr: "no matching sheet layout"},
		{name: "Empty", csv: "", wantErr: "no matching sheet layout"},
		{name: "BadID", csv: "id;qty\nX7;1\n", wantErr: "line 2: invalid product id"},
		{name: "NegativeQuantity", csv: "id;qty\n7;-1\n", wantErr: "line 2: quantity must be 0 or greater"},
		{name: "ZeroPrice", csv: "id;qty;price\n7;1;0,00\n", wantErr: "line 2: price must be a positive number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stocksheet.Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
