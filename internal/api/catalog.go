package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kkmall-be/internal/logger"
	"kkmall-be/internal/product"
	"kkmall-be/internal/records"
)

type catalogHandler struct {
	catalog product.Service
}

func (h *catalogHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := product.Filter{
		CategoryID:    q.Get("categoryId"),
		SubcategoryID: q.Get("subcategoryId"),
		Brands:        q["brand"],
		Search:        q.Get("search"),
	}
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		filter.MaxPrice = &v
	}
	if v, err := strconv.ParseBool(q.Get("inStock")); err == nil {
		filter.InStock = &v
	}
	if v, err := strconv.ParseBool(q.Get("isNew")); err == nil {
		filter.IsNew = &v
	}
	if v, err := strconv.ParseBool(q.Get("isHot")); err == nil {
		filter.IsHot = &v
	}

	sortBy := product.Sort{
		Field: q.Get("sort"),
		Desc:  q.Get("order") != "asc",
	}

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))

	result, err := h.catalog.List(r.Context(), filter, sortBy, page, perPage)
	if err != nil {
		h.writeCatalogError(w, r, "product list failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": result})
}

func (h *catalogHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.writeCatalogError(w, r, "product lookup failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": p})
}

func (h *catalogHandler) brands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.Brands(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		h.writeCatalogError(w, r, "brand list failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": brands})
}

func (h *catalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.writeCatalogError(w, r, "category list failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": cats})
}

func (h *catalogHandler) writeCatalogError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger.FromCtx(r.Context()).Error(msg, zap.String("layer", "handler"), zap.Error(err))

	switch {
	case errors.Is(err, records.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, records.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "record store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
