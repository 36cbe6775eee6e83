// Package main provides the petshop gateway API server implementation.
package main

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/calendar"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/eventbus"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/evolution"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/persistence"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/registry"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/web"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/webhook"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	registry    *registry.Registry
	flow        *evolution.ProvisioningFlow
	calendar    *calendar.Gateway
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	webhookTimeout time.Duration,
	pollInterval time.Duration,
) *API {
	reg := registry.NewRegistry(logger, store.WebhookRepository())
	client := webhook.NewClient(logger, reg, webhookTimeout)

	flow := evolution.NewProvisioningFlow(logger, client, eventBus, evolution.PollerConfig{
		Interval: pollInterval,
	})

	return &API{
		logger:      logger,
		persistence: store,
		eventBus:    eventBus,
		registry:    reg,
		flow:        flow,
		calendar:    calendar.NewGateway(logger, client, reg, eventBus),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(
		a.persistence.WebhookRepository(),
		a.registry,
		a.flow,
		a.calendar,
		a.eventBus,
		a.validate,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Petshop Gateway API")
	})

	w := app.Group("/webhooks")
	w.Get("/", handlers.GetWebhooks)
	w.Post("/", handlers.SaveWebhook)
	w.Post("/import", handlers.ImportWebhooks)
	w.Patch("/:identifier", handlers.UpdateWebhook)
	w.Delete("/:identifier", handlers.DeleteWebhook)

	i := app.Group("/instances")
	i.Post("/", handlers.CreateInstance)
	i.Get("/current", handlers.GetInstanceState)
	i.Post("/retry", handlers.RetryInstance)
	i.Post("/reset", handlers.ResetInstance)
	i.Post("/qr/refresh", handlers.RefreshInstanceQR)

	cal := app.Group("/calendar/events")
	cal.Get("/", handlers.GetCalendarEvents)
	cal.Post("/", handlers.CreateCalendarEvent)
	cal.Patch("/:id", handlers.UpdateCalendarEvent)
	cal.Delete("/:id", handlers.DeleteCalendarEvent)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}

// Close stops the pairing poller so no timer outlives the server.
func (a *API) Close() {
	a.flow.Close()
}
