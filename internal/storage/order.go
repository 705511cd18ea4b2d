package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/goshop/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// DailySales — выручка и число заказов за один день.
type DailySales struct {
	Date   string  `json:"date"`
	Orders int     `json:"orders"`
	Sales  float64 `json:"sales"`
}

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrderTx вставляет заказ и его позиции одной транзакцией.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	// ListOrders возвращает все заказы с именами покупателей для админского списка.
	ListOrders(ctx context.Context) ([]*models.Order, error)
	MarkOrderPaid(ctx context.Context, id int64, result *models.PaymentResult) error
	MarkOrderDelivered(ctx context.Context, id int64) error
	// SalesSummary возвращает общее число заказов, суммарную выручку и разбивку по дням.
	SalesSummary(ctx context.Context) (int, float64, []*DailySales, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, payment_method, items_price, shipping_price, tax_price, total_price,
	is_paid, paid_at, payment_id, payment_status, payment_email, is_delivered, delivered_at,
	ship_full_name, ship_address, ship_city, ship_postal_code, ship_country, created_at`

func scanOrder(row interface{ Scan(...any) error }, withUserName bool) (*models.Order, error) {
	o := &models.Order{}
	var paymentID, paymentStatus, paymentEmail sql.NullString
	dest := []any{
		&o.ID, &o.UserID, &o.PaymentMethod, &o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
		&o.IsPaid, &o.PaidAt, &paymentID, &paymentStatus, &paymentEmail, &o.IsDelivered, &o.DeliveredAt,
		&o.ShippingAddress.FullName, &o.ShippingAddress.Address, &o.ShippingAddress.City,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country, &o.CreatedAt,
	}
	if withUserName {
		dest = append(dest, &o.UserName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if paymentID.Valid || paymentStatus.Valid || paymentEmail.Valid {
		o.PaymentResult = &models.PaymentResult{
			PaymentID: paymentID.String,
			Status:    paymentStatus.String,
			Email:     paymentEmail.String,
		}
	}
	return o, nil
}

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (*models.Order, error) {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, payment_method, items_price, shipping_price, tax_price, total_price,
			ship_full_name, ship_address, ship_city, ship_postal_code, ship_country)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id, created_at`,
		order.UserID, order.PaymentMethod, order.ItemsPrice, order.ShippingPrice, order.TaxPrice, order.TotalPrice,
		order.ShippingAddress.FullName, order.ShippingAddress.Address, order.ShippingAddress.City,
		order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range order.OrderItems {
		item.OrderID = order.ID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, name, image, quantity, price)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			item.OrderID, item.ProductID, item.Name, item.Image, item.Quantity, item.Price,
		).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return order, nil
}

func (r *orderRepository) getOrderItems(ctx context.Context, orderIDs []int64) (map[int64][]*models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return map[int64][]*models.OrderItem{}, nil
	}
	query := `SELECT id, order_id, product_id, name, image, quantity, price
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[int64][]*models.OrderItem)
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Image, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	order, err := scanOrder(row, false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	items, err := r.getOrderItems(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.OrderItems = items[order.ID]
	return order, nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	return r.collectOrders(ctx, rows, false)
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	query := `SELECT o.id, o.user_id, o.payment_method, o.items_price, o.shipping_price, o.tax_price, o.total_price,
			o.is_paid, o.paid_at, o.payment_id, o.payment_status, o.payment_email, o.is_delivered, o.delivered_at,
			o.ship_full_name, o.ship_address, o.ship_city, o.ship_postal_code, o.ship_country, o.created_at, u.name
		FROM orders o
		JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.collectOrders(ctx, rows, true)
}

func (r *orderRepository) collectOrders(ctx context.Context, rows *sql.Rows, withUserName bool) ([]*models.Order, error) {
	defer rows.Close()

	var orders []*models.Order
	var ids []int64
	for rows.Next() {
		order, err := scanOrder(rows, withUserName)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.getOrderItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.OrderItems = items[order.ID]
	}
	return orders, nil
}

func (r *orderRepository) MarkOrderPaid(ctx context.Context, id int64, result *models.PaymentResult) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET is_paid = TRUE, paid_at = NOW(), payment_id = $1, payment_status = $2, payment_email = $3
		 WHERE id = $4`,
		result.PaymentID, result.Status, result.Email, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) MarkOrderDelivered(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET is_delivered = TRUE, delivered_at = NOW() WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) SalesSummary(ctx context.Context) (int, float64, []*DailySales, error) {
	var numOrders int
	var totalSales float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(total_price), 0) FROM orders").Scan(&numOrders, &totalSales)
	if err != nil {
		return 0, 0, nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT TO_CHAR(created_at, 'YYYY-MM-DD') AS day, COUNT(*), SUM(total_price)
		 FROM orders GROUP BY day ORDER BY day`)
	if err != nil {
		return 0, 0, nil, err
	}
	defer rows.Close()

	var daily []*DailySales
	for rows.Next() {
		d := &DailySales{}
		if err := rows.Scan(&d.Date, &d.Orders, &d.Sales); err != nil {
			return 0, 0, nil, err
		}
		daily = append(daily, d)
	}
	if err := rows.Err(); err != nil {
		return 0, 0, nil, err
	}
	return numOrders, totalSales, daily, nil
}
