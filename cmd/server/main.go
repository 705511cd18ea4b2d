package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/goshop/internal/app"
	"github.com/linemk/goshop/internal/app/handlers"
	"github.com/linemk/goshop/internal/config"
	"github.com/linemk/goshop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/goshop/internal/lib/corsmw"
	"github.com/linemk/goshop/internal/lib/logger"
	"github.com/linemk/goshop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/goshop/internal/lib/metrics"
	"github.com/linemk/goshop/internal/service"
	"github.com/linemk/goshop/internal/storage"
	"github.com/linemk/goshop/internal/upload"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	uploads, err := upload.NewDiskStore(cfg.Uploads.Dir)
	if err != nil {
		log.Error("failed to initialize uploads dir", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize uploads dir"))
	}

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(corsmw.New(cfg.CORS.AllowedOrigin))
	router.Use(metrics.Middleware)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	reviewRepo := storage.NewReviewRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(application.Logger, application.DB, productRepo, reviewRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, orderRepo, userRepo)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Server is running..."))
	})
	router.Get("/keys/paypal", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(cfg.Payment.PayPalClientID))
	})
	router.Handle("/metrics", promhttp.Handler())

	// загруженные изображения товаров
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploads.Dir)))
	router.Get("/uploads/*", fileServer.ServeHTTP)

	// аутентификация
	router.Post("/users/signin", handlers.SigninHandler(application.Logger, authService))
	router.Post("/users/signup", handlers.SignupHandler(application.Logger, authService))

	// публичный каталог
	router.Get("/products", handlers.ListProductsHandler(application.Logger, catalogService))
	router.Get("/products/categories", handlers.CategoriesHandler(application.Logger, catalogService))
	router.Get("/products/slug/{slug}", handlers.ProductBySlugHandler(application.Logger, catalogService))

	authMW := jwtmiddleware.Authenticate()

	// операции, требующие входа
	router.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Post("/products/{id}/reviews", handlers.CreateReviewHandler(application.Logger, catalogService))
		r.Post("/orders", handlers.PlaceOrderHandler(application.Logger, orderService))
		r.Get("/orders/mine", handlers.MyOrdersHandler(application.Logger, orderService))
		r.Put("/orders/{id}/pay", handlers.PayOrderHandler(application.Logger, orderService))
	})

	// админские операции
	router.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Use(jwtmiddleware.RequireAdmin)
		r.Get("/users", handlers.ListUsersHandler(application.Logger, userRepo))
		r.Get("/products/admin", handlers.AdminProductsHandler(application.Logger, catalogService))
		r.Post("/products/create", handlers.CreateProductHandler(application.Logger, catalogService, uploads))
		r.Delete("/products/{id}", handlers.DeleteProductHandler(application.Logger, catalogService))
		r.Get("/orders", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Get("/orders/summary", handlers.SummaryHandler(application.Logger, orderService))
		r.Put("/orders/{id}/deliver", handlers.DeliverOrderHandler(application.Logger, orderService))
	})

	// маршруты с параметром id идут после фиксированных путей
	router.Get("/products/{id}", handlers.ProductByIDHandler(application.Logger, catalogService))
	router.With(authMW).Get("/orders/{id}", handlers.OrderByIDHandler(application.Logger, orderService))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
