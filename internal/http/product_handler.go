package http

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

type ProductHandler struct {
	catalog CatalogService
	timeout time.Duration
}

func NewProductHandler(catalog CatalogService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

// GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.List(ctx)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	respondJSON(w, r, http.StatusOK, out)
}

// GET /api/v1/products/{id}/image
func (h *ProductHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "id must be a positive integer")
		return
	}

	p, err := h.catalog.Get(ctx, id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if len(p.ImageData) == 0 {
		respondError(w, r, http.StatusNotFound, "not_found", "product has no image")
		return
	}

	mime := p.ImageMimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(p.ImageData)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(p.ImageData)
}
