package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/linemk/goshop/internal/domain/models"
)

var ErrDuplicateReview = errors.New("review already submitted")

// ReviewStorage описывает методы для работы с отзывами.
// Добавление отзыва и пересчет агрегатов товара выполняются в одной транзакции.
type ReviewStorage interface {
	GetReviewsByProductID(ctx context.Context, productID int64) ([]*models.Review, error)
	// HasReviewByNameTx проверяет, оставлял ли автор с таким именем отзыв на товар.
	HasReviewByNameTx(ctx context.Context, tx *sql.Tx, productID int64, name string) (bool, error)
	CreateReviewTx(ctx context.Context, tx *sql.Tx, review *models.Review) (*models.Review, error)
	// RecomputeAggregatesTx обновляет num_reviews и rating товара по всем его отзывам
	// и возвращает новые значения.
	RecomputeAggregatesTx(ctx context.Context, tx *sql.Tx, productID int64) (int, float64, error)
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewStorage {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) GetReviewsByProductID(ctx context.Context, productID int64) ([]*models.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, product_id, name, rating, comment, created_at FROM reviews WHERE product_id = $1 ORDER BY created_at, id",
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		review := &models.Review{}
		if err := rows.Scan(&review.ID, &review.ProductID, &review.Name, &review.Rating, &review.Comment, &review.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) HasReviewByNameTx(ctx context.Context, tx *sql.Tx, productID int64, name string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM reviews WHERE product_id = $1 AND name = $2)",
		productID, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *reviewRepository) CreateReviewTx(ctx context.Context, tx *sql.Tx, review *models.Review) (*models.Review, error) {
	err := tx.QueryRowContext(ctx,
		"INSERT INTO reviews (product_id, name, rating, comment) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		review.ProductID, review.Name, review.Rating, review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		// пара (product_id, name) уникальна, страхует от гонки двух одновременных отзывов
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}
	return review, nil
}

func (r *reviewRepository) RecomputeAggregatesTx(ctx context.Context, tx *sql.Tx, productID int64) (int, float64, error) {
	var numReviews int
	var rating float64
	err := tx.QueryRowContext(ctx,
		`UPDATE products SET
			num_reviews = (SELECT COUNT(*) FROM reviews WHERE product_id = $1),
			rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = $1), 0)
		 WHERE id = $1 RETURNING num_reviews, rating`,
		productID).Scan(&numReviews, &rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrProductNotFound
		}
		return 0, 0, err
	}
	return numReviews, rating, nil
}
