package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/goshop/internal/app/handlers"
	"github.com/linemk/goshop/internal/domain/models"
	"github.com/linemk/goshop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/goshop/internal/service"
	"github.com/linemk/goshop/internal/storage"
	"github.com/stretchr/testify/assert"
)

// fakeAuthService — фиктивная реализация для тестирования.
type fakeAuthService struct {
	user  *models.User
	token string
	err   error
}

func (f *fakeAuthService) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	return f.user, f.token, f.err
}

func (f *fakeAuthService) SignUp(ctx context.Context, name, email, password string) (*models.User, string, error) {
	return f.user, f.token, f.err
}

// fakeCatalogService — фиктивная реализация CatalogService
type fakeCatalogService struct {
	products   []*models.Product
	product    *models.Product
	categories []string
	review     *models.Review
	numReviews int
	rating     float64
	err        error
}

func (f *fakeCatalogService) Search(ctx context.Context, text, category string) ([]*models.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalogService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return f.product, f.err
}

func (f *fakeCatalogService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return f.product, f.err
}

func (f *fakeCatalogService) ListCategories(ctx context.Context) ([]string, error) {
	return f.categories, f.err
}

func (f *fakeCatalogService) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	return f.product, f.err
}

func (f *fakeCatalogService) Delete(ctx context.Context, id int64) (*models.Product, error) {
	return f.product, f.err
}

func (f *fakeCatalogService) SubmitReview(ctx context.Context, identity models.Identity, productID int64, rating int, comment string) (*models.Review, int, float64, error) {
	return f.review, f.numReviews, f.rating, f.err
}

// fakeOrderService — фиктивная реализация OrderService
type fakeOrderService struct {
	order   *models.Order
	orders  []*models.Order
	summary *service.SalesSummary
	err     error
}

func (f *fakeOrderService) Place(ctx context.Context, identity models.Identity, cart service.Cart) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) MarkPaid(ctx context.Context, id int64, result *models.PaymentResult) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) MarkDelivered(ctx context.Context, id int64) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) GetForUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	return f.orders, f.err
}

func (f *fakeOrderService) GetByID(ctx context.Context, identity models.Identity, id int64) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) ListAll(ctx context.Context) ([]*models.Order, error) {
	return f.orders, f.err
}

func (f *fakeOrderService) Summary(ctx context.Context) (*service.SalesSummary, error) {
	return f.summary, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func withIdentity(req *http.Request, identity models.Identity) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), jwtmiddleware.IdentityKey, identity))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeMessage(t *testing.T, body *bytes.Buffer) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	assert.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Message
}

func TestSigninHandler_Success(t *testing.T) {
	fakeSvc := &fakeAuthService{
		user:  &models.User{ID: 1, Name: "Alice", Email: "alice@example.com"},
		token: "test-token",
	}
	handler := handlers.SigninHandler(testLogger(), fakeSvc)

	reqBody := `{"email": "alice@example.com", "password": "password123"}`
	req := httptest.NewRequest("POST", "/users/signin", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.UserResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "Alice", resp.Name)
	assert.Equal(t, "test-token", resp.Token)
}

func TestSigninHandler_InvalidCredentials(t *testing.T) {
	fakeSvc := &fakeAuthService{err: fmt.Errorf("signin: %w", service.ErrInvalidCredentials)}
	handler := handlers.SigninHandler(testLogger(), fakeSvc)

	reqBody := `{"email": "alice@example.com", "password": "wrong-password"}`
	req := httptest.NewRequest("POST", "/users/signin", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	// тело не раскрывает, что именно неверно: email или пароль
	assert.Equal(t, "Invalid email or password", decodeMessage(t, rr.Body))
}

func TestSigninHandler_ValidationError(t *testing.T) {
	fakeSvc := &fakeAuthService{}
	handler := handlers.SigninHandler(testLogger(), fakeSvc)

	reqBody := `{"email": "not-an-email", "password": "password123"}`
	req := httptest.NewRequest("POST", "/users/signin", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignupHandler_DuplicateEmail(t *testing.T) {
	fakeSvc := &fakeAuthService{err: fmt.Errorf("signup: %w", storage.ErrEmailTaken)}
	handler := handlers.SignupHandler(testLogger(), fakeSvc)

	reqBody := `{"name": "Alice", "email": "alice@example.com", "password": "password123"}`
	req := httptest.NewRequest("POST", "/users/signup", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Email already in use", decodeMessage(t, rr.Body))
}

func TestListProductsHandler_WrapsInProductKey(t *testing.T) {
	fakeSvc := &fakeCatalogService{
		products: []*models.Product{{ID: 1, Name: "Shirt", Slug: "shirt"}},
	}
	handler := handlers.ListProductsHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/products?search=shirt", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp handlers.ProductListResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp.Product, 1)
	assert.Equal(t, "shirt", resp.Product[0].Slug)
}

func TestProductBySlugHandler_NotFound(t *testing.T) {
	fakeSvc := &fakeCatalogService{err: fmt.Errorf("get: %w", storage.ErrProductNotFound)}
	handler := handlers.ProductBySlugHandler(testLogger(), fakeSvc)

	req := withURLParam(httptest.NewRequest("GET", "/products/slug/missing", nil), "slug", "missing")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Product Not Found", decodeMessage(t, rr.Body))
}

func TestCreateReviewHandler_Success(t *testing.T) {
	fakeSvc := &fakeCatalogService{
		review:     &models.Review{ID: 1, Name: "Alice", Rating: 4, Comment: "good"},
		numReviews: 1,
		rating:     4.0,
	}
	handler := handlers.CreateReviewHandler(testLogger(), fakeSvc)

	reqBody := `{"rating": 4, "comment": "good"}`
	req := httptest.NewRequest("POST", "/products/1/reviews", bytes.NewBufferString(reqBody))
	req = withURLParam(req, "id", "1")
	req = withIdentity(req, models.Identity{ID: 1, Name: "Alice"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp handlers.ReviewCreatedResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Review Created", resp.Message)
	assert.Equal(t, 1, resp.NumReviews)
	assert.Equal(t, 4.0, resp.Rating)
}

func TestCreateReviewHandler_MissingIdentity(t *testing.T) {
	fakeSvc := &fakeCatalogService{}
	handler := handlers.CreateReviewHandler(testLogger(), fakeSvc)

	reqBody := `{"rating": 4, "comment": "good"}`
	req := httptest.NewRequest("POST", "/products/1/reviews", bytes.NewBufferString(reqBody))
	req = withURLParam(req, "id", "1")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateReviewHandler_RatingOutOfRange(t *testing.T) {
	fakeSvc := &fakeCatalogService{}
	handler := handlers.CreateReviewHandler(testLogger(), fakeSvc)

	reqBody := `{"rating": 6, "comment": "too good"}`
	req := httptest.NewRequest("POST", "/products/1/reviews", bytes.NewBufferString(reqBody))
	req = withURLParam(req, "id", "1")
	req = withIdentity(req, models.Identity{ID: 1, Name: "Alice"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateReviewHandler_Duplicate(t *testing.T) {
	fakeSvc := &fakeCatalogService{err: fmt.Errorf("review: %w", storage.ErrDuplicateReview)}
	handler := handlers.CreateReviewHandler(testLogger(), fakeSvc)

	reqBody := `{"rating": 4, "comment": "again"}`
	req := httptest.NewRequest("POST", "/products/1/reviews", bytes.NewBufferString(reqBody))
	req = withURLParam(req, "id", "1")
	req = withIdentity(req, models.Identity{ID: 1, Name: "Alice"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "You already submitted a review", decodeMessage(t, rr.Body))
}

func TestPlaceOrderHandler_Success(t *testing.T) {
	fakeSvc := &fakeOrderService{
		order: &models.Order{ID: 1, UserID: 1, TotalPrice: 44.5},
	}
	handler := handlers.PlaceOrderHandler(testLogger(), fakeSvc)

	reqBody := `{"orderItems":[{"product":2,"name":"Shirt","quantity":3,"price":10}],"shippingAddress":{"fullName":"Alice","address":"1 Main st","city":"Springfield","postalCode":"12345","country":"US"},"paymentMethod":"PayPal"}`
	req := httptest.NewRequest("POST", "/orders", bytes.NewBufferString(reqBody))
	req = withIdentity(req, models.Identity{ID: 1, Name: "Alice"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp handlers.OrderResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "New Order Created", resp.Message)
	assert.Equal(t, 44.5, resp.Order.TotalPrice)
}

func TestPlaceOrderHandler_EmptyCart(t *testing.T) {
	fakeSvc := &fakeOrderService{err: fmt.Errorf("place: %w", service.ErrEmptyCart)}
	handler := handlers.PlaceOrderHandler(testLogger(), fakeSvc)

	reqBody := `{"orderItems":[],"shippingAddress":{},"paymentMethod":"PayPal"}`
	req := httptest.NewRequest("POST", "/orders", bytes.NewBufferString(reqBody))
	req = withIdentity(req, models.Identity{ID: 1})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Cart is empty", decodeMessage(t, rr.Body))
}

func TestPlaceOrderHandler_MissingIdentity(t *testing.T) {
	fakeSvc := &fakeOrderService{}
	handler := handlers.PlaceOrderHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("POST", "/orders", bytes.NewBufferString(`{}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPayOrderHandler_Success(t *testing.T) {
	order := &models.Order{ID: 5, IsPaid: true}
	fakeSvc := &fakeOrderService{order: order}
	handler := handlers.PayOrderHandler(testLogger(), fakeSvc)

	reqBody := `{"id":"pay-1","status":"COMPLETED","email_address":"alice@example.com"}`
	req := httptest.NewRequest("PUT", "/orders/5/pay", bytes.NewBufferString(reqBody))
	req = withURLParam(req, "id", "5")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp handlers.OrderResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Order Paid", resp.Message)
	assert.True(t, resp.Order.IsPaid)
}

func TestOrderByIDHandler_Forbidden(t *testing.T) {
	fakeSvc := &fakeOrderService{err: fmt.Errorf("get: %w", service.ErrForbidden)}
	handler := handlers.OrderByIDHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/orders/5", nil)
	req = withURLParam(req, "id", "5")
	req = withIdentity(req, models.Identity{ID: 2})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Forbidden", decodeMessage(t, rr.Body))
}

func TestDeleteProductHandler_Success(t *testing.T) {
	fakeSvc := &fakeCatalogService{product: &models.Product{ID: 1, Name: "Shirt"}}
	handler := handlers.DeleteProductHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("DELETE", "/products/1", nil)
	req = withURLParam(req, "id", "1")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp handlers.ProductDeletedResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "product deleted successfully", resp.Message)
	assert.Equal(t, int64(1), resp.Product.ID)
}

func TestSummaryHandler_Success(t *testing.T) {
	fakeSvc := &fakeOrderService{
		summary: &service.SalesSummary{NumOrders: 2, TotalSales: 89.0, NumUsers: 3},
	}
	handler := handlers.SummaryHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/orders/summary", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp service.SalesSummary
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 2, resp.NumOrders)
	assert.Equal(t, 89.0, resp.TotalSales)
	assert.Equal(t, 3, resp.NumUsers)
}
