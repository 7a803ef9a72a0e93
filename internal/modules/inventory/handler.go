package inventory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes stock polling and admin stock endpoints. Reservations are
// not exposed over HTTP; they happen through the cart and order services.
type Handler struct{ ledger Ledger }

func NewHandler(ledger Ledger) *Handler { return &Handler{ledger: ledger} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Get("/{product_id}/stock", h.getStock)
		r.Put("/{product_id}/stock", h.setStock)
	})
}

func (h *Handler) getStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	level, err := h.ledger.Stock(r.Context(), productID)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, level)
}

func (h *Handler) setStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	var body struct {
		Stock int `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.ledger.SetStock(r.Context(), productID, body.Stock); err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "stock updated"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
