package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/messagely/messaging-api/internal/api/handler"
	"github.com/messagely/messaging-api/internal/api/middleware"
	"github.com/messagely/messaging-api/internal/core/ports"

	_ "github.com/messagely/messaging-api/docs"
)

// Dependencies bundles everything the router needs wired in.
type Dependencies struct {
	Accounts ports.AccountService
	Messages ports.MessageService
	Recorder handler.LoginRecorder
	Mongo    *mongo.Database
	Redis    *redis.Client
	Secret   string
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("messagely"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Accounts, deps.Recorder)
	userHandler := handler.NewUserHandler(deps.Accounts, deps.Messages)
	messageHandler := handler.NewMessageHandler(deps.Messages)

	authRequired := middleware.Auth(deps.Secret)
	selfOnly := middleware.RequireSelf()

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- User routes ---
	users := e.Group("/users", authRequired)
	users.GET("", userHandler.List)
	users.GET("/:username", userHandler.Get, selfOnly)
	users.GET("/:username/from", userHandler.Sent, selfOnly)
	users.GET("/:username/to", userHandler.Received, selfOnly)

	// --- Message routes ---
	messages := e.Group("/messages", authRequired)
	messages.POST("", messageHandler.Send)
	messages.GET("/:id", messageHandler.Get)
	messages.POST("/:id/read", messageHandler.MarkRead)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
