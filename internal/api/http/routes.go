package httpapi

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-forecast-ingest/internal/ingest"
)

var validate = validator.New()

// Service is what the HTTP layer needs from ingest.Service.
type Service interface {
	Run(ctx context.Context) ingest.Result
	History() *ingest.History
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. Manual runs are
// throttled by limiter.
func RegisterRoutes(app *fiber.App, service Service, limiter *rate.Limiter) {
	v1 := app.Group("/api/v1/ingest")

	// Every outcome, failures included, is reported with 200: the run itself
	// never errors, only describes what happened.
	v1.Post("/run", func(c *fiber.Ctx) error {
		var q runQuery
		q.Format = c.Query("format", "json")
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if !limiter.Allow() {
			return fiber.NewError(fiber.StatusTooManyRequests, "a run was triggered recently; try again later")
		}

		res := service.Run(c.UserContext())
		if q.Format == "text" {
			return c.SendString(res.Message)
		}
		return c.JSON(res)
	})

	v1.Get("/runs", func(c *fiber.Ctx) error {
		var q runsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		recent := service.History().Recent()
		if len(recent) > q.Limit {
			recent = recent[len(recent)-q.Limit:]
		}
		return c.JSON(fiber.Map{
			"count": len(recent),
			"runs":  recent,
		})
	})

	v1.Get("/runs/last", func(c *fiber.Ctx) error {
		last, ok := service.History().Last()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no runs recorded yet")
		}
		return c.JSON(last)
	})
}

// runQuery holds query parameters for the run endpoint.
type runQuery struct {
	Format string `validate:"oneof=json text"`
}

// runsQuery holds query parameters for the history endpoint.
type runsQuery struct {
	Limit int `validate:"gte=1,lte=100"`
}

func (q *runsQuery) bind(c *fiber.Ctx) error {
	q.Limit = 20
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		q.Limit = n
	}
	return validate.Struct(q)
}
