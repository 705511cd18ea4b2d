package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/goshop/internal/domain/models"
	"github.com/linemk/goshop/internal/service"
)

// ProductListResponse — ответ поиска, ключ product как в исходном API
type ProductListResponse struct {
	Product []*models.Product `json:"product"`
}

// ListProductsHandler обрабатывает GET /products?search=&category=
func ListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		search := r.URL.Query().Get("search")
		category := r.URL.Query().Get("category")

		products, err := catalog.Search(r.Context(), search, category)
		if err != nil {
			logger.Error("failed to search products", slog.Any("error", err))
			writeError(w, err)
			return
		}
		if products == nil {
			products = []*models.Product{}
		}
		writeJSON(w, http.StatusOK, ProductListResponse{Product: products})
	}
}

// CategoriesHandler обрабатывает GET /products/categories
func CategoriesHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoriesHandler"
		logger := log.With(slog.String("op", op))

		categories, err := catalog.ListCategories(r.Context())
		if err != nil {
			logger.Error("failed to list categories", slog.Any("error", err))
			writeError(w, err)
			return
		}
		if categories == nil {
			categories = []string{}
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

// ProductBySlugHandler обрабатывает GET /products/slug/{slug}
func ProductBySlugHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductBySlugHandler"
		logger := log.With(slog.String("op", op))

		slug := chi.URLParam(r, "slug")
		if slug == "" {
			writeMessage(w, http.StatusBadRequest, "slug parameter is required")
			return
		}

		product, err := catalog.GetBySlug(r.Context(), slug)
		if err != nil {
			logger.Warn("failed to get product by slug", slog.Any("error", err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

// ProductByIDHandler обрабатывает GET /products/{id}
func ProductByIDHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductByIDHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid product id")
			return
		}

		product, err := catalog.GetByID(r.Context(), id)
		if err != nil {
			logger.Warn("failed to get product by id", slog.Any("error", err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

// AdminProductsHandler обрабатывает GET /products/admin — полный список без фильтров
func AdminProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalog.Search(r.Context(), "", "")
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			writeError(w, err)
			return
		}
		if products == nil {
			products = []*models.Product{}
		}
		writeJSON(w, http.StatusOK, products)
	}
}
