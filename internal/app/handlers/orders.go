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

// PlaceOrderRequest — снимок корзины клиента
type PlaceOrderRequest struct {
	OrderItems      []*models.OrderItem `json:"orderItems"`
	ShippingAddress models.Address      `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod" validate:"required"`
}

// OrderResponse — ответ с заказом и сообщением
type OrderResponse struct {
	Message string        `json:"message"`
	Order   *models.Order `json:"order"`
}

// PayOrderRequest — результат внешнего платежа
type PayOrderRequest struct {
	PaymentID string `json:"id"`
	Status    string `json:"status"`
	Email     string `json:"email_address"`
}

// PlaceOrderHandler обрабатывает POST /orders
func PlaceOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PlaceOrderHandler"
		logger := log.With(slog.String("op", op))

		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("identity not found in context")
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req PlaceOrderRequest
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

		order, err := orders.Place(r.Context(), identity, service.Cart{
			OrderItems:      req.OrderItems,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
		})
		if err != nil {
			logger.Warn("failed to place order", slog.Any("error", err))
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, OrderResponse{Message: "New Order Created", Order: order})
	}
}

// MyOrdersHandler обрабатывает GET /orders/mine
func MyOrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MyOrdersHandler"
		logger := log.With(slog.String("op", op))

		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("identity not found in context")
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		list, err := orders.GetForUser(r.Context(), identity.ID)
		if err != nil {
			logger.Error("failed to get orders", slog.Any("error", err))
			writeError(w, err)
			return
		}
		if list == nil {
			list = []*models.Order{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// OrderByIDHandler обрабатывает GET /orders/{id} — доступ у владельца и администратора
func OrderByIDHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderByIDHandler"
		logger := log.With(slog.String("op", op))

		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("identity not found in context")
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid order id")
			return
		}

		order, err := orders.GetByID(r.Context(), identity, id)
		if err != nil {
			logger.Warn("failed to get order", slog.Any("error", err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

// PayOrderHandler обрабатывает PUT /orders/{id}/pay
func PayOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PayOrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid order id")
			return
		}

		var req PayOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeMessage(w, http.StatusBadRequest, "invalid request")
			return
		}

		order, err := orders.MarkPaid(r.Context(), id, &models.PaymentResult{
			PaymentID: req.PaymentID,
			Status:    req.Status,
			Email:     req.Email,
		})
		if err != nil {
			logger.Warn("failed to mark order paid", slog.Any("error", err))
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, OrderResponse{Message: "Order Paid", Order: order})
	}
}

// DeliverOrderHandler обрабатывает PUT /orders/{id}/deliver (только админ)
func DeliverOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeliverOrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid order id")
			return
		}

		order, err := orders.MarkDelivered(r.Context(), id)
		if err != nil {
			logger.Warn("failed to mark order delivered", slog.Any("error", err))
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, OrderResponse{Message: "Order Delivered", Order: order})
	}
}

// ListOrdersHandler обрабатывает GET /orders (только админ)
func ListOrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		list, err := orders.ListAll(r.Context())
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			writeError(w, err)
			return
		}
		if list == nil {
			list = []*models.Order{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// SummaryHandler обрабатывает GET /orders/summary (только админ)
func SummaryHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SummaryHandler"
		logger := log.With(slog.String("op", op))

		summary, err := orders.Summary(r.Context())
		if err != nil {
			logger.Error("failed to get summary", slog.Any("error", err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
