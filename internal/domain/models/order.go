package models

import "time"

// Order представляет заказ, созданный при оформлении корзины.
// Цены позиций фиксируются на момент оформления и дальше не пересчитываются.
type Order struct {
	ID              int64          `json:"_id"`
	UserID          int64          `json:"user"`
	UserName        string         `json:"userName,omitempty"` // заполняется через JOIN для админских списков
	OrderItems      []*OrderItem   `json:"orderItems"`
	ShippingAddress Address        `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
	PaymentResult   *PaymentResult `json:"paymentResult,omitempty"`
	ItemsPrice      float64        `json:"itemsPrice"`
	ShippingPrice   float64        `json:"shippingPrice"`
	TaxPrice        float64        `json:"taxPrice"`
	TotalPrice      float64        `json:"totalPrice"`
	IsPaid          bool           `json:"isPaid"`
	PaidAt          *time.Time     `json:"paidAt,omitempty"`
	IsDelivered     bool           `json:"isDelivered"`
	DeliveredAt     *time.Time     `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// OrderItem — позиция заказа со снимком цены товара
type OrderItem struct {
	ID        int64   `json:"_id"`
	OrderID   int64   `json:"-"`
	ProductID int64   `json:"product"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Address — снимок адреса доставки на момент оформления
type Address struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentResult — результат внешнего платежа, приходит при подтверждении оплаты
type PaymentResult struct {
	PaymentID string `json:"id"`
	Status    string `json:"status"`
	Email     string `json:"email_address"`
}
