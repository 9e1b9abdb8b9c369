package devapi

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillpad/internal/catalog"
)

const defaultSuggestLimit = 10

func (h *Handler) searchClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"clients": h.store.SearchClients(r.URL.Query().Get("q"))})
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	c, err := h.store.Client(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	limit := defaultSuggestLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": h.store.Suggest(r.URL.Query().Get("q"), limit)})
}

func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := catalog.ProductQuery{
		Search:      q.Get("search"),
		Category:    q.Get("category"),
		ViewDeleted: q.Get("view_deleted") == "1" || q.Get("view_deleted") == "true",
		FilterType:  q.Get("filter_type"),
	}

	if s := q.Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			query.Page = n
		}
	}

	writeJSON(w, http.StatusOK, h.store.Products(query))
}

func (h *Handler) priceHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	log, err := h.store.PriceHistory(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, log)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	h.productAction(w, r, h.store.DeleteProduct, "Product deleted")
}

func (h *Handler) restoreProduct(w http.ResponseWriter, r *http.Request) {
	h.productAction(w, r, h.store.RestoreProduct, "Product restored")
}

func (h *Handler) productAction(w http.ResponseWriter, r *http.Request, fn func(int64) error, msg string) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := fn(id); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{Success: true, Message: msg})
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids" validate:"min=1,dive,gt=0"`
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if !decode(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, bulkDeleteResponse{Success: true, Deleted: h.store.BulkDelete(req.IDs)})
}

type quantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req quantityRequest
	if !decode(w, r, &req) {
		return
	}

	upd, err := h.store.UpdateQuantity(id, req.Quantity)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, upd)
}

type priceRequest struct {
	Quantity int             `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price"`
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req priceRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.store.UpdatePrice(id, req.Quantity, req.Price, "admin"); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{Success: true, Message: "Price updated"})
}
