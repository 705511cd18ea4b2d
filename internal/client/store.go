package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/linemk/goshop/internal/domain/models"
)

// Ключи персистентного состояния, один в один с исходным клиентом
const (
	keyCartItems       = "cartItems"
	keyUserInfo        = "userInfo"
	keyShippingAddress = "shippingAddress"
	keyPaymentMethod   = "paymentMethod"
)

// Storage — адаптер персистентности состояния (аналог localStorage)
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// Store хранит состояние клиента и применяет к нему события.
// Состояние загружается из Storage при создании и сохраняется при каждой мутации.
type Store struct {
	mu      sync.Mutex
	state   State
	storage Storage
}

func NewStore(storage Storage) (*Store, error) {
	s := &Store{storage: storage}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load client state: %w", err)
	}
	return s, nil
}

func (s *Store) load() error {
	if raw, ok := s.storage.Get(keyCartItems); ok {
		if err := json.Unmarshal([]byte(raw), &s.state.Cart.CartItems); err != nil {
			return fmt.Errorf("bad cartItems: %w", err)
		}
	}
	if raw, ok := s.storage.Get(keyUserInfo); ok {
		if err := json.Unmarshal([]byte(raw), &s.state.UserInfo); err != nil {
			return fmt.Errorf("bad userInfo: %w", err)
		}
	}
	if raw, ok := s.storage.Get(keyShippingAddress); ok {
		if err := json.Unmarshal([]byte(raw), &s.state.Cart.ShippingAddress); err != nil {
			return fmt.Errorf("bad shippingAddress: %w", err)
		}
	}
	if raw, ok := s.storage.Get(keyPaymentMethod); ok {
		s.state.Cart.PaymentMethod = raw
	}
	return nil
}

// State возвращает копию текущего состояния
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	state.Cart.CartItems = append([]CartItem(nil), s.state.Cart.CartItems...)
	if s.state.UserInfo != nil {
		info := *s.state.UserInfo
		state.UserInfo = &info
	}
	return state
}

// Dispatch применяет событие и сохраняет затронутые части состояния
func (s *Store) Dispatch(action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a := action.(type) {
	case CartAddItem:
		replaced := false
		for i, item := range s.state.Cart.CartItems {
			if item.ProductID == a.Item.ProductID {
				s.state.Cart.CartItems[i] = a.Item
				replaced = true
				break
			}
		}
		if !replaced {
			s.state.Cart.CartItems = append(s.state.Cart.CartItems, a.Item)
		}
		return s.persistJSON(keyCartItems, s.state.Cart.CartItems)

	case CartRemoveItem:
		items := s.state.Cart.CartItems[:0]
		for _, item := range s.state.Cart.CartItems {
			if item.ProductID != a.ProductID {
				items = append(items, item)
			}
		}
		s.state.Cart.CartItems = items
		return s.persistJSON(keyCartItems, s.state.Cart.CartItems)

	case CartClear:
		s.state.Cart.CartItems = nil
		return s.storage.Remove(keyCartItems)

	case SaveShippingAddress:
		s.state.Cart.ShippingAddress = a.Address
		return s.persistJSON(keyShippingAddress, s.state.Cart.ShippingAddress)

	case SavePaymentMethod:
		s.state.Cart.PaymentMethod = a.Method
		return s.storage.Set(keyPaymentMethod, a.Method)

	case UserSignin:
		user := a.User
		s.state.UserInfo = &user
		return s.persistJSON(keyUserInfo, s.state.UserInfo)

	case UserSignout:
		// как в исходном клиенте: сессия, адрес и способ оплаты сбрасываются,
		// позиции корзины остаются
		s.state.UserInfo = nil
		s.state.Cart.ShippingAddress = models.Address{}
		s.state.Cart.PaymentMethod = ""
		for _, key := range []string{keyUserInfo, keyShippingAddress, keyPaymentMethod} {
			if err := s.storage.Remove(key); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown action %T", action)
	}
}

func (s *Store) persistJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.storage.Set(key, string(raw))
}
