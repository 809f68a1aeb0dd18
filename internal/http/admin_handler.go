package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type AdminHandler struct {
	catalog        CatalogService
	timeout        time.Duration
	maxUploadBytes int64
}

func NewAdminHandler(catalog CatalogService, timeout time.Duration, maxUploadBytes int64) *AdminHandler {
	return &AdminHandler{
		catalog:        catalog,
		timeout:        timeout,
		maxUploadBytes: maxUploadBytes,
	}
}

// GET /api/v1/admin/products
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.List(ctx)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	out := make([]AdminProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toAdminProductDTO(p))
	}
	respondJSON(w, r, http.StatusOK, out)
}

// POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	in, ok := h.parseProductForm(w, r)
	if !ok {
		return
	}

	p, err := h.catalog.Create(ctx, in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, toAdminProductDTO(p))
}

// PUT /api/v1/admin/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "id must be a positive integer")
		return
	}
	in, ok := h.parseProductForm(w, r)
	if !ok {
		return
	}

	p, err := h.catalog.Update(ctx, id, in)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toAdminProductDTO(p))
}

// DELETE /api/v1/admin/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", "id must be a positive integer")
		return
	}

	if err := h.catalog.Delete(ctx, id); err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseProductForm reads the multipart product form. The image file field
// is optional here; the catalog decides whether it is required.
func (h *AdminHandler) parseProductForm(w http.ResponseWriter, r *http.Request) (domain.ProductInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "upload_too_large", "upload exceeds the size limit")
			return domain.ProductInput{}, false
		}
		respondError(w, r, http.StatusBadRequest, "invalid_request", "expected a multipart form")
		return domain.ProductInput{}, false
	}

	in := domain.ProductInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Cost:        r.FormValue("cost"),
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, true
	}
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "could not read image upload")
		return domain.ProductInput{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "could not read image upload")
		return domain.ProductInput{}, false
	}
	in.Image = &domain.Image{
		Filename: sanitizeFilename(header.Filename),
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}
	return in, true
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, name)
	return strings.TrimLeft(name, ".")
}
