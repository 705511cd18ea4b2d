package client

import (
	"github.com/linemk/goshop/internal/domain/models"
)

// CartItem — позиция корзины, подмножество полей товара
type CartItem struct {
	ProductID    int64   `json:"product"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	CountInStock int     `json:"countInStock"`
}

// UserInfo — данные сессии вошедшего пользователя
type UserInfo struct {
	ID      int64  `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

// Cart — состояние корзины покупателя
type Cart struct {
	CartItems       []CartItem     `json:"cartItems"`
	ShippingAddress models.Address `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
}

// State — полное состояние клиента: корзина и сессия пользователя
type State struct {
	Cart     Cart      `json:"cart"`
	UserInfo *UserInfo `json:"userInfo"`
}

// ItemCount возвращает суммарное количество единиц товара в корзине
func (s State) ItemCount() int {
	count := 0
	for _, item := range s.Cart.CartItems {
		count += item.Quantity
	}
	return count
}

// ItemsPrice возвращает суммарную стоимость товаров в корзине
func (s State) ItemsPrice() float64 {
	total := 0.0
	for _, item := range s.Cart.CartItems {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Action — событие, изменяющее состояние клиента
type Action interface{ isAction() }

// CartAddItem добавляет позицию; если товар уже в корзине, позиция заменяется
type CartAddItem struct{ Item CartItem }

// CartRemoveItem убирает позицию по идентификатору товара
type CartRemoveItem struct{ ProductID int64 }

// CartClear очищает позиции корзины (после успешного оформления заказа)
type CartClear struct{}

// SaveShippingAddress сохраняет адрес доставки
type SaveShippingAddress struct{ Address models.Address }

// SavePaymentMethod сохраняет выбранный способ оплаты
type SavePaymentMethod struct{ Method string }

// UserSignin сохраняет сессию вошедшего пользователя
type UserSignin struct{ User UserInfo }

// UserSignout завершает сессию; позиции корзины при этом сохраняются
type UserSignout struct{}

func (CartAddItem) isAction()         {}
func (CartRemoveItem) isAction()      {}
func (CartClear) isAction()           {}
func (SaveShippingAddress) isAction() {}
func (SavePaymentMethod) isAction()   {}
func (UserSignin) isAction()          {}
func (UserSignout) isAction()         {}
