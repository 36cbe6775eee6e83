package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/calendar"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/evolution"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/persistence"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/webhook"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleDispatchError maps the webhook error taxonomy and domain validation
// errors onto problem responses.
func handleDispatchError(c fiber.Ctx, err error) error {
	switch {
	case webhook.IsConfigurationError(err):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("webhook_not_configured").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case webhook.IsTransportError(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("webhook_unreachable").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	case webhook.IsParseError(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("webhook_bad_response").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	case errors.Is(err, evolution.ErrInstanceNameRequired),
		errors.Is(err, evolution.ErrNoPreviousAttempt),
		errors.Is(err, calendar.ErrSummaryRequired),
		errors.Is(err, calendar.ErrEventIDRequired),
		errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, calendar.ErrInvalidTime),
		persistence.IsValidationError(err):
		return badRequest(c, err.Error())

	case persistence.IsEndpointNotFound(err):
		return notFound(c, "webhook endpoint not found")

	default:
		return internalError(c, err)
	}
}
