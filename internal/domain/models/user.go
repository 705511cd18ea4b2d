package models

import "time"

// Identity — аутентифицированный пользователь, восстановленный из проверенного токена
type Identity struct {
	ID      int64
	Name    string
	Email   string
	IsAdmin bool
}

// User представляет пользователя магазина
type User struct {
	ID        int64     `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"-"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}
