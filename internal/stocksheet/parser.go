// Package stocksheet reads stock-take and price-list sheets and applies the
// rows a user approved to the catalog.
package stocksheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/tillpad/internal/encoding"
)

var ErrNoProfile = errors.New("no matching sheet layout: expected product_id and quantity columns")

// Row is one product update read from a sheet. Price is nil on stock-take
// sheets.
type Row struct {
	Line      int
	ProductID int64
	Quantity  int
	Price     *decimal.Decimal
}

// Sheet is a parsed stock sheet.
type Sheet struct {
	Profile string
	Charset enc.Charset
	Rows    []Row
}

// separators are tried in order until one yields a known header.
var separators = []rune{';', ',', '\t'}

// Parse reads a sheet in any supported encoding and separator.
func Parse(r io.Reader) (*Sheet, error) {
	utf8r, charset, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	for _, sep := range separators {
		rows, err := readCSV(data, sep)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		parsed, err := parseRows(profile, cols, rows[headerIdx+1:])
		if err != nil {
			return nil, err
		}

		return &Sheet{Profile: profile.Name, Charset: charset, Rows: parsed}, nil
	}

	return nil, ErrNoProfile
}

// record is a CSV row with the 1-based file line it started on.
type record struct {
	line  int
	cells []string
}

func readCSV(data []byte, sep rune) ([]record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var out []record

	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}

		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		out = append(out, record{line: line, cells: cells})
	}
}

// detectProfile scans rows for a header matching a known profile and
// returns it with its column map and the header row index.
func detectProfile(rows []record) (*Profile, columns, int) {
	for rowIdx, row := range rows {
		cols := make(columns)

		for i, cell := range row.cells {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if cols.matches(&profiles[i]) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// parseRows reads the data rows that follow the header.
func parseRows(p *Profile, cols columns, rows []record) ([]Row, error) {
	idIdx, _ := cols.find(p.IDCols)
	qtyIdx, _ := cols.find(p.QtyCols)

	priceIdx := -1
	if p.HasPrice() {
		priceIdx, _ = cols.find(p.PriceCol)
	}

	var out []Row

	for _, rec := range rows {
		row, line := rec.cells, rec.line

		rawID := cellValue(row, idIdx)
		if rawID == "" {
			continue
		}

		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("line %d: invalid product id %q", line, rawID)
		}

		qty, err := strconv.Atoi(cellValue(row, qtyIdx))
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("line %d: quantity must be 0 or greater", line)
		}

		r := Row{Line: line, ProductID: id, Quantity: qty}

		if raw := cellValue(row, priceIdx); raw != "" {
			price, err := parseAmount(raw)
			if err != nil || !price.IsPositive() {
				return nil, fmt.Errorf("line %d: price must be a positive number, got %q", line, raw)
			}

			r.Price = &price
		}

		out = append(out, r)
	}

	return out, nil
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
