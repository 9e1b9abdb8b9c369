package devapi

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tillpad/internal/bill"
	"github.com/MrJamesThe3rd/tillpad/internal/export"
)

func (h *Handler) billRoutes(r chi.Router) {
	r.Post("/", h.createBill)
	r.Get("/active", h.activeBills)
	r.Post("/add_item", h.quickAdd)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.withBill(h.getBill))
		r.Put("/", h.withBill(h.saveBill))
		r.Post("/items", h.withBill(h.addItem))
		r.Put("/items/{item}", h.withBill(h.updateItem))
		r.Delete("/items/{item}", h.withBill(h.removeItem))
		r.Post("/discount", h.withBill(h.applyDiscount))
		r.Delete("/discount", h.withBill(h.removeDiscount))
		r.Post("/tax", h.withBill(h.applyTax))
		r.Delete("/tax", h.withBill(h.removeTax))
		r.Post("/finalize", h.withBill(h.finalize))
		r.Get("/preview", h.preview)
		r.Get("/export/{format}", h.exportBill)
	})
}

// billHandler handles a request for one bill. It returns handled when it
// already wrote the response.
type billHandler func(w http.ResponseWriter, r *http.Request, id int64) (b bill.Bill, handled bool, err error)

// withBill resolves the {id} parameter and writes the bill fn returns.
func (h *Handler) withBill(fn billHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid bill id")
			return
		}

		b, handled, err := fn(w, r, id)
		if handled {
			return
		}

		if err != nil {
			writeStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, b)
	}
}

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var req bill.CreateParams
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	created, err := h.store.CreateBill(req)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createdResponse{Success: true, BillID: created.ID, Number: created.Number})
}

func (h *Handler) activeBills(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Bills []BillSummary `json:"bills"`
	}{h.store.ActiveBills()})
}

type quickAddRequest struct {
	BillID    *int64 `json:"bill_id" validate:"omitempty,gt=0"`
	ProductID int64  `json:"product_id" validate:"gt=0"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

func (h *Handler) quickAdd(w http.ResponseWriter, r *http.Request) {
	var req quickAddRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}

	id, err := h.store.QuickAdd(req.BillID, req.ProductID, req.Quantity)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createdResponse{Success: true, BillID: id})
}

func (h *Handler) getBill(_ http.ResponseWriter, _ *http.Request, id int64) (bill.Bill, bool, error) {
	b, err := h.store.Bill(id)
	return b, false, err
}

func (h *Handler) saveBill(w http.ResponseWriter, r *http.Request, id int64) (bill.Bill, bool, error) {
	var snap bill.Snapshot
	if !decode(w, r, &snap) {
		return bill.Bill{}, true, nil
	}

	b, err := h.store.SaveBill(id, snap)

	return b, false, err
}

type itemRequest struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request, id int64) (bill.Bill, bool, error) {
	var req itemRequest
	if !decode(w, r, &req) {
		return bill.Bill{}, true, nil
	}

	b, err := h.store.AddItem(id, req.ProductID, req.Quantity)

	return b, false, err
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request, id int64) (bill.Bill, bool, error) {
	var req quantityRequest
	if !decode(w, r, &req) {
		return bill.Bill{}, true, nil
	}

	b, err := h.store.UpdateItem(id, bill.ItemID(chi.URLParam(r, "item")), req.Quantity)

	return b, false, err
}

func (h *Handler) removeItem(_ http.ResponseWriter, r *http.Request, id int64) (bill.Bill, bool, error) {
	b, err := h.store.RemoveItem(id, bill.ItemID(chi.URLParam(r, "item")))
	return b, false, err
}

func (h *Handler) applyDiscount(w http.ResponseWriter, r *http.Request, id int64) (bill.Bill, bool, error) {
	var d bill.Discount
	if !decode(w, r, &d) {
		return bill.Bill{}, true, nil
	}

	b, err := h.store.SetDiscount(id, &d)

	return b, false, err
}

func (h *Handler) removeDiscount(_ http.ResponseWriter, _ *http.Request, id int64) (bill.Bill, bool, error) {
	b, err := h.store.SetDiscount(id, nil)
	return b, false, err
}

func (h *Handler) applyTax(w http.ResponseWriter, r *http.Request, id int64) (bill.Bill, bool, error) {
	var t bill.Tax
	if !decode(w, r, &t) {
		return bill.Bill{}, true, nil
	}

	b, err := h.store.SetTax(id, &t)

	return b, false, err
}

func (h *Handler) removeTax(_ http.ResponseWriter, _ *http.Request, id int64) (bill.Bill, bool, error) {
	b, err := h.store.SetTax(id, nil)
	return b, false, err
}

func (h *Handler) finalize(_ http.ResponseWriter, _ *http.Request, id int64) (bill.Bill, bool, error) {
	b, err := h.store.Finalize(id)
	return b, false, err
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	b, err := h.store.Bill(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	page, err := previewHTML(b)
	if err != nil {
		writeStoreError(w, fmt.Errorf("rendering preview: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		HTML string `json:"html"`
	}{page})
}

func (h *Handler) exportBill(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	b, err := h.store.Bill(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
		f           = export.Format(strings.ToLower(chi.URLParam(r, "format")))
	)

	switch f {
	case export.FormatPDF:
		contentType = "application/pdf"
		err = renderPDF(&buf, b)
	case export.FormatHTML:
		contentType = "text/html; charset=utf-8"
		err = renderHTML(&buf, b)
	case export.FormatText:
		contentType = "text/plain; charset=utf-8"
		_, err = buf.WriteString(export.Receipt(b))
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", f))
		return
	}

	if err != nil {
		slog.Error("failed to render bill", "bill", id, "format", f, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", b.Number+"."+string(f)))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}
