package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/bookhaven/book-review-api/docs"
	"github.com/bookhaven/book-review-api/internal/api/handler"
	"github.com/bookhaven/book-review-api/internal/api/middleware"
	"github.com/bookhaven/book-review-api/internal/core/service"
	mongodb "github.com/bookhaven/book-review-api/internal/infrastructure/db/mongo"
	redisdb "github.com/bookhaven/book-review-api/internal/infrastructure/db/redis"
)

const tokenTTL = 24 * time.Hour

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("bookreview"))

	// --- Repositories ---
	bookRepo := mongodb.NewBookRepository(db)
	reviewRepo := mongodb.NewReviewRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	loginLimiter := redisdb.NewLoginLimiter(rdb)

	// --- Services ---
	statsService := service.NewStatsService(reviewRepo)
	bookService := service.NewBookService(bookRepo, reviewRepo, userRepo, statsService, log)
	reviewService := service.NewReviewService(bookRepo, reviewRepo, userRepo, statsService, log)
	userService := service.NewUserService(bookRepo, reviewRepo, userRepo, statsService, log)
	authService := service.NewAuthService(userRepo, loginLimiter, jwtSecret, tokenTTL, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	bookHandler := handler.NewBookHandler(bookService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	userHandler := handler.NewUserHandler(userService)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	authRequired := middleware.Auth(jwtSecret, userRepo)

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)

	// --- Book routes (reads are public, writes require auth) ---
	e.GET("/books", bookHandler.List)
	e.GET("/books/:id", bookHandler.Get)
	e.POST("/books", bookHandler.Create, authRequired)
	e.PUT("/books/:id", bookHandler.Update, authRequired)
	e.DELETE("/books/:id", bookHandler.Delete, authRequired)

	// --- Review routes ---
	e.GET("/reviews/:bookId", reviewHandler.List)
	e.POST("/reviews/:bookId", reviewHandler.Create, authRequired)
	e.PUT("/reviews/:bookId/:reviewId", reviewHandler.Update, authRequired)
	e.DELETE("/reviews/:bookId/:reviewId", reviewHandler.Delete, authRequired)

	// --- User routes ---
	e.GET("/users/me", userHandler.Me, authRequired)

	// --- Operational endpoints ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/docs/*", echoswagger.WrapHandler)

	return e
}
