// Package router assembles the Fiber application: global middleware, the
// /api routes with their access policies, the /ws stock feed and /healthz.
package router

import (
	"log/slog"

	"sweet-shop-api/internal/handler"
	"sweet-shop-api/internal/middleware"
	"sweet-shop-api/internal/policy"
	"sweet-shop-api/internal/repository"
	"sweet-shop-api/internal/service"
	"sweet-shop-api/internal/ws"
	"sweet-shop-api/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

type Deps struct {
	AppName string
	DB      *gorm.DB
	Log     *slog.Logger
	Hub     *ws.Hub
	Tokens  *jwt.Manager

	Users     repository.UserRepository
	Auth      service.AuthService
	Catalog   service.CatalogService
	Inventory service.InventoryService

	// AccessLog disables the HTTP access log when false.
	AccessLog bool
}

func New(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:      d.AppName,
		ErrorHandler: handler.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(d.Log))

	authHandler := handler.NewAuthHandler(d.Auth)
	sweetHandler := handler.NewSweetHandler(d.Catalog, d.Inventory)
	healthHandler := handler.NewHealthHandler(d.DB)

	app.Get("/healthz", healthHandler.Check)

	api := app.Group("/api", middleware.Authenticate(d.Tokens, d.Users))

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/me", middleware.Require(policy.AuthenticatedOnly), authHandler.Me)

	// Sweets. Search is public and must be registered before /:id.
	readOrAdmin := middleware.Require(policy.AdminOrReadOnly)
	api.Get("/sweets/search", middleware.Require(policy.AllowAny), sweetHandler.Search)
	api.Get("/sweets", readOrAdmin, sweetHandler.List)
	api.Post("/sweets", readOrAdmin, sweetHandler.Create)
	api.Get("/sweets/:id", readOrAdmin, sweetHandler.Get)
	api.Put("/sweets/:id", readOrAdmin, sweetHandler.Replace)
	api.Patch("/sweets/:id", readOrAdmin, sweetHandler.Patch)
	api.Delete("/sweets/:id", readOrAdmin, sweetHandler.Delete)

	// Inventory
	api.Post("/sweets/:id/purchase", middleware.Require(policy.AuthenticatedOnly), sweetHandler.Purchase)
	api.Post("/sweets/:id/restock", middleware.Require(policy.AdminOnly), sweetHandler.Restock)

	// WebSocket Route
	if d.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(func(c *websocket.Conn) {
			if !d.Hub.Join(c) {
				return
			}
			defer d.Hub.Leave(c)

			for {
				// Keep alive loop
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}

	return app
}
