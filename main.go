package main

import (
	"fmt"
	"log"

	"github.com/ManuelReschke/SubSync/internal/pkg/database"
	"github.com/ManuelReschke/SubSync/internal/pkg/env"
	"github.com/ManuelReschke/SubSync/internal/pkg/router"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()

	app := fiber.New(fiber.Config{
		BodyLimit: 1048576, // 1 MiB, webhook payloads are small
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
