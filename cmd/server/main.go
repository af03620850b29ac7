package main

import (
	"log"
	"strings"

	"bayi-backend/internal/admin"
	"bayi-backend/internal/audit"
	"bayi-backend/internal/auth"
	"bayi-backend/internal/config"
	"bayi-backend/internal/customers"
	"bayi-backend/internal/database"
	"bayi-backend/internal/forecast"
	"bayi-backend/internal/models"
	"bayi-backend/internal/orders"
	"bayi-backend/internal/reports"
	"bayi-backend/internal/sales"
	"bayi-backend/internal/scheduler"
	"bayi-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	forecastClient := forecast.NewClient(cfg.ForecastAPIURL)

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Bayi yönetimi
	adminRoutes.Post("/locations", admin.CreateLocationHandler())
	adminRoutes.Get("/locations", admin.ListLocationsHandler())
	adminRoutes.Get("/locations/:id", admin.GetLocationHandler())
	adminRoutes.Put("/locations/:id", admin.UpdateLocationHandler())
	adminRoutes.Delete("/locations/:id", admin.DeleteLocationHandler())
	adminRoutes.Post("/locations/:id/users", admin.CreateFranchiseUserHandler())
	adminRoutes.Get("/locations/:id/users", admin.ListLocationUsersHandler())

	// Stok yönetimi
	adminRoutes.Post("/stock", stock.CreateStockRecordHandler())
	adminRoutes.Put("/stock/:id", stock.UpdateStockRecordHandler())
	adminRoutes.Delete("/stock/:id", stock.RemoveStockRecordHandler())
	adminRoutes.Post("/stock/:id/adjust", stock.AdjustStockHandler())
	adminRoutes.Post("/stock/import", stock.ImportStockHandler())

	// Stok talebi kararları
	adminRoutes.Post("/stock-orders/:id/approve", orders.ApproveOrderHandler())
	adminRoutes.Post("/stock-orders/:id/reject", orders.RejectOrderHandler())

	// Audit undo
	adminRoutes.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	// Ortak (auth gerektiren) route'lar

	// Stok görünümü
	protected.Get("/stock", stock.ListStockHandler())

	// Satış
	protected.Post("/sales", sales.CreateSaleHandler())
	protected.Get("/sales", sales.ListSalesHandler())
	protected.Get("/sales/history", sales.SalesHistoryHandler())

	// Stok talepleri
	protected.Post("/stock-orders", orders.CreateOrderHandler())
	protected.Get("/stock-orders", orders.ListOrdersHandler())

	// Müşteriler
	protected.Get("/customers", customers.ListCustomersHandler())

	// Raporlar
	protected.Get("/reports/summary", reports.SummaryHandler())
	protected.Get("/reports/low-stock", reports.LowStockHandler(cfg))

	// Tahmin (harici Prophet servisi)
	protected.Get("/forecast/:sku", forecast.ForecastHandler(forecastClient))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Günlük düşük stok taraması
	sched := scheduler.New(cfg)
	sched.Start()
	defer sched.Stop()

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
