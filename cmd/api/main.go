package main

import (
	"log"
	"time"

	config "github.com/learnlab/learnlab-backend/configs"
	"github.com/learnlab/learnlab-backend/database"
	"github.com/learnlab/learnlab-backend/handlers"
	"github.com/learnlab/learnlab-backend/jobs"
	"github.com/learnlab/learnlab-backend/notifications"
	"github.com/learnlab/learnlab-backend/realtime"
	"github.com/learnlab/learnlab-backend/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	database.SeedDemo()
	notifications.InitEmailService()

	hub := realtime.NewHub()
	handlers.InitRealtime(hub)
	defer hub.CloseAll()

	c := cron.New()
	c.AddFunc("*/5 * * * *", jobs.SendSessionReminders)
	c.AddFunc("*/5 * * * *", jobs.ReconcilePendingPayments)
	go c.Start()
	log.Println("✅ Cron jobs for reminders and payment reconciliation scheduled.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "LearnLab",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to LearnLab API",
		})
	})

	routes.PublicRoutes(app)
	routes.AuthRoutes(app)
	routes.ProfileRoutes(app)
	routes.SessionRoutes(app)
	routes.ProgramRoutes(app)
	routes.EnrollmentRoutes(app)
	routes.PaymentRoutes(app)
	routes.MessagingRoutes(app)
	routes.UploadRoutes(app)
	routes.AdminRoutes(app)

	app.Get("/api/health", func(c *fiber.Ctx) error {
		dbStatus := "missing"
		if config.Config("DATABASE_URL") != "" {
			dbStatus = "configured"
		}
		return c.JSON(fiber.Map{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": config.ConfigOr("APP_ENV", "development"),
			"database":    dbStatus,
		})
	})

	port := config.ConfigOr("PORT", "8080")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
