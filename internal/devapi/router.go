package devapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handler serves the backend contract from a Store.
type Handler struct {
	store *Store
	csrf  *CSRF
}

func NewHandler(store *Store, csrf *CSRF) *Handler {
	return &Handler{store: store, csrf: csrf}
}

// New returns the development backend router.
func New(h *Handler, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", csrfHeader, "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/", h.landing)

	router.Group(func(r chi.Router) {
		r.Use(h.csrf.Protect)

		r.Route("/api/temp_bills", h.billRoutes)
		r.Route("/api/clients", func(r chi.Router) {
			r.Get("/search", h.searchClients)
			r.Get("/{id}", h.getClient)
		})
		r.Get("/api/price_history/{id}", h.priceHistory)

		r.Get("/landing_search", h.suggest)
		r.Get("/products", h.products)
		r.Post("/delete_product/{id}", h.deleteProduct)
		r.Post("/restore_product/{id}", h.restoreProduct)

		r.With(middleware.AllowContentType("application/json")).Group(func(r chi.Router) {
			r.Post("/bulk_delete", h.bulkDelete)
			r.Post("/update_quantity/{id}", h.updateQuantity)
			r.Post("/update_price/{id}", h.updatePrice)
		})
	})

	return router
}

func (h *Handler) landing(w http.ResponseWriter, _ *http.Request) {
	token, err := h.csrf.Issue()
	if err != nil {
		slog.Error("failed to issue csrf token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := landingTemplate.Execute(w, struct{ Token string }{token}); err != nil {
		slog.Error("failed to render landing page", "error", err)
	}
}
