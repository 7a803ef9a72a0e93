package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/velorahq/velora-backend/internal/modules/auth"
	"github.com/velorahq/velora-backend/internal/modules/inventory"
)

// Handler exposes cart HTTP endpoints. All routes require authentication;
// the user is taken from the request context, never the payload.
type Handler struct {
	service Service
	secret  string
}

func NewHandler(service Service, jwtSecret string) *Handler {
	return &Handler{service: service, secret: jwtSecret}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.secret))
		r.Get("/", h.getCart)
		r.Post("/items", h.addItem)
		r.Patch("/items/{product_id}/increase", h.increase)
		r.Patch("/items/{product_id}/decrease", h.decrease)
		r.Delete("/items/{product_id}", h.removeItem)
		r.Delete("/", h.clear)
	})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := h.service.Add(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) increase(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.Increase)
}

func (h *Handler) decrease(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.Decrease)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.Remove)
}

// adjust handles the line mutations that share the same shape: a product ID
// from the path plus optional size/color query params identifying the line.
func (h *Handler) adjust(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, userID, productID, size, color string) (*Cart, error)) {
	productID := chi.URLParam(r, "product_id")
	size := r.URL.Query().Get("size")
	color := r.URL.Query().Get("color")

	c, err := op(r.Context(), auth.UserID(r.Context()), productID, size, color)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), auth.UserID(r.Context())); err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "cart cleared"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, inventory.ErrNotFound), errors.Is(err, ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, ErrMinimumReached),
		errors.Is(err, ErrMaxQuantity):
		return http.StatusBadRequest
	case errors.Is(err, inventory.ErrConflict):
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
