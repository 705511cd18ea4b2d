package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/goshop/internal/domain/models"
	"github.com/linemk/goshop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/goshop/internal/service"
)

// ReviewRequest — тело POST /products/{id}/reviews
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// ReviewCreatedResponse возвращает отзыв и новые агрегаты товара
type ReviewCreatedResponse struct {
	Message    string         `json:"message"`
	Review     *models.Review `json:"review"`
	NumReviews int            `json:"numReviews"`
	Rating     float64        `json:"rating"`
}

// CreateReviewHandler обрабатывает POST /products/{id}/reviews (аутентифицированный пользователь)
func CreateReviewHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateReviewHandler"
		logger := log.With(slog.String("op", op))

		productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid product id")
			return
		}

		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("identity not found in context")
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req ReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeMessage(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeMessage(w, http.StatusBadRequest, "validation error")
			return
		}

		review, numReviews, rating, err := catalog.SubmitReview(r.Context(), identity, productID, req.Rating, req.Comment)
		if err != nil {
			logger.Warn("failed to submit review", slog.Any("error", err))
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ReviewCreatedResponse{
			Message:    "Review Created",
			Review:     review,
			NumReviews: numReviews,
			Rating:     rating,
		})
	}
}
