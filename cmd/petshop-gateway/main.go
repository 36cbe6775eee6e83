package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/cmd"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/log"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/otelhelper"
)

const defaultPort = 9090

func main() {
	logger := log.WithModule("gateway")

	command := &cli.Command{
		Name:                  "petshop-gateway",
		Usage:                 "Webhook gateway for the petshop dashboard: instance pairing, agenda and webhook configuration",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Webhook configuration store URL (postgres://, redis:// or a file path)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.DurationFlag{
				Name:    "webhook-timeout",
				Usage:   "Timeout for outbound webhook calls",
				Value:   30 * time.Second,
				Sources: cli.EnvVars("WEBHOOK_TIMEOUT"),
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				Usage:   "Interval between pairing status checks",
				Value:   10 * time.Second,
				Sources: cli.EnvVars("POLL_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing petshop gateway")

			if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
				_, err := otelhelper.NewTracer(ctx, "petshop-gateway")
				if err != nil {
					logger.WarnContext(ctx, "Failed to initialize tracing", "error", err)
				}
			}

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(
				logger,
				persistence,
				eventBus,
				command.Duration("webhook-timeout"),
				command.Duration("poll-interval"),
			)
			defer api.Close()

			err := api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
