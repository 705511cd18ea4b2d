package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/linemk/goshop/internal/domain/models"
	"github.com/linemk/goshop/internal/lib/metrics"
	"github.com/linemk/goshop/internal/storage"
)

// CatalogService определяет операции над каталогом товаров и отзывами.
type CatalogService interface {
	Search(ctx context.Context, text, category string) ([]*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) (*models.Product, error)
	// SubmitReview добавляет отзыв и возвращает его вместе с новыми агрегатами товара.
	SubmitReview(ctx context.Context, identity models.Identity, productID int64, rating int, comment string) (*models.Review, int, float64, error)
}

type catalogService struct {
	log         *slog.Logger
	db          *sql.DB
	productRepo storage.ProductStorage
	reviewRepo  storage.ReviewStorage
}

func NewCatalogService(log *slog.Logger, db *sql.DB, productRepo storage.ProductStorage, reviewRepo storage.ReviewStorage) CatalogService {
	return &catalogService{
		log:         log,
		db:          db,
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
	}
}

func (s *catalogService) Search(ctx context.Context, text, category string) ([]*models.Product, error) {
	const op = "service.CatalogService.Search"
	s.log.Info("searching products", slog.String("op", op), slog.String("text", text), slog.String("category", category))

	products, err := s.productRepo.Search(ctx, text, category)
	if err != nil {
		s.log.Error("failed to search products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to search products: %w", op, err)
	}
	return products, nil
}

// GetBySlug возвращает товар вместе со списком отзывов
func (s *catalogService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	const op = "service.CatalogService.GetBySlug"

	product, err := s.productRepo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.withReviews(ctx, op, product)
}

func (s *catalogService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.GetByID"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.withReviews(ctx, op, product)
}

func (s *catalogService) withReviews(ctx context.Context, op string, product *models.Product) (*models.Product, error) {
	reviews, err := s.reviewRepo.GetReviewsByProductID(ctx, product.ID)
	if err != nil {
		s.log.Error("failed to get reviews", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get reviews: %w", op, err)
	}
	product.Reviews = reviews
	return product, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]string, error) {
	const op = "service.CatalogService.ListCategories"

	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		s.log.Error("failed to list categories", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list categories: %w", op, err)
	}
	return categories, nil
}

func (s *catalogService) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	const op = "service.CatalogService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("slug", product.Slug))
	logger.Info("creating product")

	created, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create product: %w", op, err)
	}
	logger.Info("product created", slog.Int64("productID", created.ID))
	return created, nil
}

func (s *catalogService) Delete(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))
	logger.Info("deleting product")

	product, err := s.productRepo.DeleteProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("product deleted")
	return product, nil
}

// SubmitReview добавляет отзыв на товар и пересчитывает num_reviews и rating
// как среднее арифметическое всех оценок. Проверка дубликата идет по имени автора,
// как в исходном API. Всё выполняется одной транзакцией, при ошибке откатывается.
func (s *catalogService) SubmitReview(ctx context.Context, identity models.Identity, productID int64, rating int, comment string) (*models.Review, int, float64, error) {
	const op = "service.CatalogService.SubmitReview"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", productID), slog.String("name", identity.Name))
	logger.Info("submitting review")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, 0, 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if _, err := s.productRepo.GetProductByIDTx(ctx, tx, productID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return nil, 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.reviewRepo.HasReviewByNameTx(ctx, tx, productID, identity.Name)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to check existing review", slog.Any("error", err))
		return nil, 0, 0, fmt.Errorf("%s: failed to check existing review: %w", op, err)
	}
	if exists {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("duplicate review")
		return nil, 0, 0, fmt.Errorf("%s: %w", op, storage.ErrDuplicateReview)
	}

	review := &models.Review{
		ProductID: productID,
		Name:      identity.Name,
		Rating:    rating,
		Comment:   comment,
	}
	review, err = s.reviewRepo.CreateReviewTx(ctx, tx, review)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create review", slog.Any("error", err))
		return nil, 0, 0, fmt.Errorf("%s: failed to create review: %w", op, err)
	}

	numReviews, avgRating, err := s.reviewRepo.RecomputeAggregatesTx(ctx, tx, productID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to recompute aggregates", slog.Any("error", err))
		return nil, 0, 0, fmt.Errorf("%s: failed to recompute aggregates: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, 0, 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	metrics.ReviewsSubmittedTotal.Inc()
	logger.Info("review submitted", slog.Int("numReviews", numReviews), slog.Float64("rating", avgRating))
	return review, numReviews, avgRating, nil
}
