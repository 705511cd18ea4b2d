package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/goshop/internal/domain/models"
	"github.com/linemk/goshop/internal/service"
	"github.com/linemk/goshop/internal/upload"
)

// ProductCreatedResponse — ответ на создание товара
type ProductCreatedResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"product"`
}

// ProductDeletedResponse — ответ на удаление товара
type ProductDeletedResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"product"`
}

// CreateProductHandler обрабатывает POST /products/create (multipart, только админ).
// Изображение обязательно и приходит в поле image.
func CreateProductHandler(log *slog.Logger, catalog service.CatalogService, uploads upload.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		r.Body = http.MaxBytesReader(w, r.Body, upload.MaxImageSize+1<<20)
		if err := r.ParseMultipartForm(upload.MaxImageSize); err != nil {
			logger.Error("failed to parse multipart form", slog.Any("error", err))
			writeMessage(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			logger.Warn("no image uploaded")
			writeMessage(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer file.Close()

		if header.Size > upload.MaxImageSize {
			writeMessage(w, http.StatusBadRequest, "image is too large")
			return
		}

		imageName, err := uploads.Save(file, header)
		if err != nil {
			logger.Error("failed to save image", slog.Any("error", err))
			writeMessage(w, http.StatusInternalServerError, "failed to save image")
			return
		}

		price, err := strconv.ParseFloat(r.FormValue("price"), 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid price")
			return
		}
		countInStock, err := strconv.Atoi(r.FormValue("countInStock"))
		if err != nil && r.FormValue("countInStock") != "" {
			writeMessage(w, http.StatusBadRequest, "invalid countInStock")
			return
		}

		product := &models.Product{
			Name:         r.FormValue("name"),
			Slug:         r.FormValue("slug"),
			Image:        imageName,
			Brand:        r.FormValue("brand"),
			Category:     r.FormValue("category"),
			Description:  r.FormValue("description"),
			Price:        price,
			CountInStock: countInStock,
		}
		if product.Name == "" || product.Slug == "" {
			writeMessage(w, http.StatusBadRequest, "name and slug are required")
			return
		}

		created, err := catalog.Create(r.Context(), product)
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ProductCreatedResponse{Message: "Product Created", Product: created})
	}
}

// DeleteProductHandler обрабатывает DELETE /products/{id} (только админ)
func DeleteProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid product id")
			return
		}

		product, err := catalog.Delete(r.Context(), id)
		if err != nil {
			logger.Warn("failed to delete product", slog.Any("error", err))
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ProductDeletedResponse{Message: "product deleted successfully", Product: product})
	}
}
