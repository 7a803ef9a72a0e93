package wishlist

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/velorahq/velora-backend/internal/modules/auth"
	"github.com/velorahq/velora-backend/internal/modules/cart"
	"github.com/velorahq/velora-backend/internal/modules/inventory"
)

// Handler exposes wishlist HTTP endpoints.
type Handler struct {
	service Service
	secret  string
}

func NewHandler(service Service, jwtSecret string) *Handler {
	return &Handler{service: service, secret: jwtSecret}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/wishlist", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.secret))
		r.Get("/", h.get)
		r.Post("/items", h.add)
		r.Delete("/items/{product_id}", h.remove)
		r.Post("/items/{product_id}/move-to-cart", h.moveToCart)
		r.Delete("/", h.clear)
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	wl, err := h.service.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, wl)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	wl, err := h.service.Add(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, wl)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	wl, err := h.service.Remove(r.Context(), auth.UserID(r.Context()), productID,
		r.URL.Query().Get("size"), r.URL.Query().Get("color"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, wl)
}

func (h *Handler) moveToCart(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	wl, c, err := h.service.MoveToCart(r.Context(), auth.UserID(r.Context()), productID,
		r.URL.Query().Get("size"), r.URL.Query().Get("color"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"wishlist": wl, "cart": c})
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), auth.UserID(r.Context())); err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "wishlist cleared"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrItemNotFound), errors.Is(err, inventory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrInsufficientStock), errors.Is(err, cart.ErrMaxQuantity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
