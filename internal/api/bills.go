package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/MrJamesThe3rd/tillpad/internal/bill"
	"github.com/MrJamesThe3rd/tillpad/internal/export"
)

const billsPath = "/api/temp_bills"

// MinClientQuery is the shortest client search that is sent to the backend.
const MinClientQuery = 2

// BillSummary is a row of the active bills list.
type BillSummary struct {
	ID         int64           `json:"id"`
	Number     string          `json:"bill_number"`
	ClientName string          `json:"client_name"`
	ItemCount  int             `json:"item_count"`
	Total      decimal.Decimal `json:"total"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type Preview struct {
	HTML string `json:"html"`
}

// Text flattens the preview into one line per heading, paragraph, table row
// and totals entry, with cells separated by two spaces.
func (p Preview) Text() string {
	doc, err := html.Parse(strings.NewReader(p.HTML))
	if err != nil {
		return ""
	}

	var (
		lines []string
		cells []string
	)

	flush := func() {
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, "  "))
			cells = nil
		}
	}

	for n := range doc.Descendants() {
		switch n.Type {
		case html.ElementNode:
			switch n.DataAtom {
			case atom.H1, atom.H2, atom.H3, atom.P, atom.Div, atom.Tr, atom.Dt, atom.Li, atom.Br:
				flush()
			}
		case html.TextNode:
			if s := strings.Join(strings.Fields(n.Data), " "); s != "" {
				cells = append(cells, s)
			}
		}
	}

	flush()

	return strings.Join(lines, "\n")
}

func billPath(id int64, parts ...string) string {
	p := billsPath + "/" + strconv.FormatInt(id, 10)
	if len(parts) > 0 {
		p += "/" + strings.Join(parts, "/")
	}

	return p
}

func (c *Client) CreateBill(ctx context.Context, params bill.CreateParams) (*bill.Created, error) {
	var out bill.Created
	if err := c.do(ctx, http.MethodPost, billsPath, nil, params, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) GetBill(ctx context.Context, id int64) (*bill.Bill, error) {
	return c.billCall(ctx, http.MethodGet, billPath(id), nil)
}

// SaveBill writes the full editable state of a bill.
func (c *Client) SaveBill(ctx context.Context, id int64, snap bill.Snapshot) (*bill.Bill, error) {
	if snap.Items == nil {
		snap.Items = []bill.LineItem{}
	}

	return c.billCall(ctx, http.MethodPut, billPath(id), snap)
}

func (c *Client) AddItem(ctx context.Context, billID, productID int64, qty int) (*bill.Bill, error) {
	body := map[string]any{"product_id": productID, "quantity": qty}
	return c.billCall(ctx, http.MethodPost, billPath(billID, "items"), body)
}

func (c *Client) UpdateItem(ctx context.Context, billID int64, itemID bill.ItemID, qty int) (*bill.Bill, error) {
	body := map[string]any{"quantity": qty}
	return c.billCall(ctx, http.MethodPut, billPath(billID, "items", url.PathEscape(string(itemID))), body)
}

func (c *Client) RemoveItem(ctx context.Context, billID int64, itemID bill.ItemID) (*bill.Bill, error) {
	return c.billCall(ctx, http.MethodDelete, billPath(billID, "items", url.PathEscape(string(itemID))), nil)
}

func (c *Client) ApplyDiscount(ctx context.Context, billID int64, d bill.Discount) (*bill.Bill, error) {
	return c.billCall(ctx, http.MethodPost, billPath(billID, "discount"), d)
}

func (c *Client) RemoveDiscount(ctx context.Context, billID int64) (*bill.Bill, error) {
	return c.billCall(ctx, http.MethodDelete, billPath(billID, "discount"), nil)
}

func (c *Client) ApplyTax(ctx context.Context, billID int64, t bill.Tax) (*bill.Bill, error) {
	return c.billCall(ctx, http.MethodPost, billPath(billID, "tax"), t)
}

func (c *Client) RemoveTax(ctx context.Context, billID int64) (*bill.Bill, error) {
	return c.billCall(ctx, http.MethodDelete, billPath(billID, "tax"), nil)
}

func (c *Client) FinalizeBill(ctx context.Context, id int64) (*bill.Bill, error) {
	return c.billCall(ctx, http.MethodPost, billPath(id, "finalize"), nil)
}

func (c *Client) PreviewBill(ctx context.Context, id int64) (*Preview, error) {
	var out Preview
	if err := c.do(ctx, http.MethodGet, billPath(id, "preview"), nil, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) ActiveBills(ctx context.Context) ([]BillSummary, error) {
	var out struct {
		Bills []BillSummary `json:"bills"`
	}

	if err := c.do(ctx, http.MethodGet, billsPath+"/active", nil, nil, &out); err != nil {
		return nil, err
	}

	return out.Bills, nil
}

// QuickAdd adds a product to billID, or to a new bill when billID is nil,
// and returns the id of the bill it landed on.
func (c *Client) QuickAdd(ctx context.Context, billID *int64, productID int64, qty int) (int64, error) {
	body := map[string]any{"bill_id": billID, "product_id": productID, "quantity": qty}

	var out struct {
		BillID int64 `json:"bill_id"`
	}

	if err := c.do(ctx, http.MethodPost, billsPath+"/add_item", nil, body, &out); err != nil {
		return 0, err
	}

	return out.BillID, nil
}

// SearchClients returns clients matching q. Queries shorter than
// MinClientQuery return nothing without a request.
func (c *Client) SearchClients(ctx context.Context, q string) ([]bill.Client, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinClientQuery {
		return nil, nil
	}

	var out struct {
		Clients []bill.Client `json:"clients"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/clients/search", url.Values{"q": {q}}, nil, &out); err != nil {
		return nil, err
	}

	return out.Clients, nil
}

func (c *Client) GetClient(ctx context.Context, id int64) (*bill.Client, error) {
	var out bill.Client
	if err := c.do(ctx, http.MethodGet, "/api/clients/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// DownloadBill streams a rendering of the bill. The caller closes the body.
func (c *Client) DownloadBill(ctx context.Context, id int64, f export.Format) (*export.Document, error) {
	resp, err := c.stream(ctx, http.MethodGet, billPath(id, "export", string(f)))
	if err != nil {
		return nil, err
	}

	return &export.Document{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Disposition: resp.Header.Get("Content-Disposition"),
	}, nil
}

func (c *Client) billCall(ctx context.Context, method, path string, body any) (*bill.Bill, error) {
	var out bill.Bill
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}

	if out.ID == 0 {
		return nil, &ParseError{Op: method + " " + path, Err: fmt.Errorf("response has no bill id")}
	}

	return &out, nil
}
