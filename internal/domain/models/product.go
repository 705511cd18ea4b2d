package models

import "time"

// Product представляет товар каталога.
// Отзывы хранятся отдельными строками, но в JSON-ответе товар
// отдается вместе со списком отзывов, как в исходном API.
type Product struct {
	ID           int64     `json:"_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Image        string    `json:"image"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	CountInStock int       `json:"countInStock"`
	Rating       float64   `json:"rating"`     // среднее по всем отзывам, 0 если отзывов нет
	NumReviews   int       `json:"numReviews"` // количество отзывов
	Reviews      []*Review `json:"reviews"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Review представляет отзыв на товар.
// На один товар допускается не более одного отзыва с одним и тем же именем.
type Review struct {
	ID        int64     `json:"_id"`
	ProductID int64     `json:"-"`
	Name      string    `json:"name"` // отображаемое имя автора
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
