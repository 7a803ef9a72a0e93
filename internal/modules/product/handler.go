package product

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/velorahq/velora-backend/internal/modules/auth"
	"github.com/velorahq/velora-backend/internal/modules/catalog"
)

// maxUploadBytes bounds the whole multipart create payload.
const maxUploadBytes = 32 << 20

// Handler exposes product HTTP endpoints. Reads are public; writes require
// an authenticated user.
type Handler struct {
	service Service
	secret  string
}

func NewHandler(service Service, secret string) *Handler {
	return &Handler{service: service, secret: secret}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(h.secret))
			r.Post("/", h.create)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

// create accepts multipart/form-data: a "data" field holding the product
// JSON, an "images" file field for product-level images, and optional
// "images[<colorId>]" file fields for colour-specific ones.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart payload"})
		return
	}

	var req CreateProductRequest
	if err := json.Unmarshal([]byte(r.FormValue("data")), &req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid product data: " + err.Error()})
		return
	}

	uploads, err := collectUploads(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	p, err := h.service.Create(r.Context(), req, uploads)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, p)
}

func collectUploads(r *http.Request) ([]Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var uploads []Upload
	for field, headers := range r.MultipartForm.File {
		colorID := ""
		switch {
		case field == "images":
		case strings.HasPrefix(field, "images[") && strings.HasSuffix(field, "]"):
			colorID = field[len("images[") : len(field)-1]
		default:
			continue
		}
		for _, hdr := range headers {
			f, err := hdr.Open()
			if err != nil {
				return nil, errors.New("reading upload " + hdr.Filename)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, errors.New("reading upload " + hdr.Filename)
			}
			uploads = append(uploads, Upload{
				OriginalName: hdr.Filename,
				Data:         data,
				ColorID:      colorID,
			})
		}
	}
	return uploads, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	if products == nil {
		products = []Product{}
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
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
