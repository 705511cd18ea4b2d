package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/linemk/goshop/internal/domain/models"
	"github.com/linemk/goshop/internal/lib/metrics"
	"github.com/linemk/goshop/internal/storage"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrForbidden = errors.New("access to order is forbidden")
)

// Политика стоимости доставки и налога: доставка бесплатна при сумме товаров
// свыше 100, иначе фиксированные 10; налог — 15% от стоимости товаров.
const (
	freeShippingThreshold = 100.0
	flatShippingPrice     = 10.0
	taxRate               = 0.15
)

// Cart — снимок корзины клиента на момент оформления заказа.
type Cart struct {
	OrderItems      []*models.OrderItem
	ShippingAddress models.Address
	PaymentMethod   string
}

// SalesSummary — сводка для админской панели.
type SalesSummary struct {
	NumOrders   int                   `json:"numOrders"`
	TotalSales  float64               `json:"totalSales"`
	NumUsers    int                   `json:"numUsers"`
	DailyOrders []*storage.DailySales `json:"dailyOrders"`
}

// OrderService определяет операции над заказами.
type OrderService interface {
	// Place создает заказ из снимка корзины; цены позиций фиксируются как есть.
	Place(ctx context.Context, identity models.Identity, cart Cart) (*models.Order, error)
	MarkPaid(ctx context.Context, id int64, result *models.PaymentResult) (*models.Order, error)
	MarkDelivered(ctx context.Context, id int64) (*models.Order, error)
	GetForUser(ctx context.Context, userID int64) ([]*models.Order, error)
	// GetByID отдает заказ владельцу или администратору.
	GetByID(ctx context.Context, identity models.Identity, id int64) (*models.Order, error)
	ListAll(ctx context.Context) ([]*models.Order, error)
	Summary(ctx context.Context) (*SalesSummary, error)
}

type orderService struct {
	log       *slog.Logger
	db        *sql.DB
	orderRepo storage.OrderStorage
	userRepo  storage.UserStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, userRepo storage.UserStorage) OrderService {
	return &orderService{
		log:       log,
		db:        db,
		orderRepo: orderRepo,
		userRepo:  userRepo,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Place вычисляет стоимости (товары, доставка, налог, итого) и сохраняет заказ
// вместе с позициями одной транзакцией.
func (s *orderService) Place(ctx context.Context, identity models.Identity, cart Cart) (*models.Order, error) {
	const op = "service.OrderService.Place"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", identity.ID))
	logger.Info("placing order", slog.Int("items", len(cart.OrderItems)))

	if len(cart.OrderItems) == 0 {
		logger.Warn("empty cart")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	itemsPrice := 0.0
	for _, item := range cart.OrderItems {
		itemsPrice += item.Price * float64(item.Quantity)
	}
	itemsPrice = round2(itemsPrice)

	shippingPrice := flatShippingPrice
	if itemsPrice > freeShippingThreshold {
		shippingPrice = 0
	}
	taxPrice := round2(taxRate * itemsPrice)

	order := &models.Order{
		UserID:          identity.ID,
		OrderItems:      cart.OrderItems,
		ShippingAddress: cart.ShippingAddress,
		PaymentMethod:   cart.PaymentMethod,
		ItemsPrice:      itemsPrice,
		ShippingPrice:   shippingPrice,
		TaxPrice:        taxPrice,
		TotalPrice:      round2(itemsPrice + shippingPrice + taxPrice),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order, err = s.orderRepo.CreateOrderTx(ctx, tx, order)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	metrics.OrdersPlacedTotal.Inc()
	logger.Info("order placed", slog.Int64("orderID", order.ID), slog.Float64("total", order.TotalPrice))
	return order, nil
}

// MarkPaid переводит заказ в оплаченные; повторная оплата оставляет заказ оплаченным.
func (s *orderService) MarkPaid(ctx context.Context, id int64, result *models.PaymentResult) (*models.Order, error) {
	const op = "service.OrderService.MarkPaid"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", id))
	logger.Info("marking order as paid")

	if err := s.orderRepo.MarkOrderPaid(ctx, id, result); err != nil {
		logger.Error("failed to mark order paid", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.OrdersPaidTotal.Inc()
	logger.Info("order paid")
	return order, nil
}

// MarkDelivered отмечает заказ доставленным. Порядок "сначала оплата, потом доставка"
// исходным API не проверялся и здесь тоже не проверяется.
func (s *orderService) MarkDelivered(ctx context.Context, id int64) (*models.Order, error) {
	const op = "service.OrderService.MarkDelivered"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", id))
	logger.Info("marking order as delivered")

	if err := s.orderRepo.MarkOrderDelivered(ctx, id); err != nil {
		logger.Error("failed to mark order delivered", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("order delivered")
	return order, nil
}

func (s *orderService) GetForUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.GetForUser"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) GetByID(ctx context.Context, identity models.Identity, id int64) (*models.Order, error) {
	const op = "service.OrderService.GetByID"

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if order.UserID != identity.ID && !identity.IsAdmin {
		s.log.Warn("order access denied", slog.String("op", op),
			slog.Int64("orderID", id), slog.Int64("userID", identity.ID))
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}
	return order, nil
}

func (s *orderService) ListAll(ctx context.Context) ([]*models.Order, error) {
	const op = "service.OrderService.ListAll"

	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) Summary(ctx context.Context) (*SalesSummary, error) {
	const op = "service.OrderService.Summary"

	numOrders, totalSales, daily, err := s.orderRepo.SalesSummary(ctx)
	if err != nil {
		s.log.Error("failed to get sales summary", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get sales summary: %w", op, err)
	}
	numUsers, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		s.log.Error("failed to count users", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to count users: %w", op, err)
	}
	return &SalesSummary{
		NumOrders:   numOrders,
		TotalSales:  round2(totalSales),
		NumUsers:    numUsers,
		DailyOrders: daily,
	}, nil
}
