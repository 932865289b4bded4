package showcase

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Abraxas-365/concourse/pkg/errx"
	"github.com/Abraxas-365/concourse/pkg/simwork"
	"github.com/gofiber/fiber/v2"
)

// ShowcaseHandlers exposes the concurrency demos over HTTP.
type ShowcaseHandlers struct {
	svc *ShowcaseService
}

// NewShowcaseHandlers creates the handlers.
func NewShowcaseHandlers(svc *ShowcaseService) *ShowcaseHandlers {
	return &ShowcaseHandlers{svc: svc}
}

// RegisterRoutes mounts the demo routes on the app.
func (h *ShowcaseHandlers) RegisterRoutes(app *fiber.App) {
	app.Get("/async-delay/:seconds", h.asyncDelay)
	app.Get("/sync-delay/:seconds", h.syncDelay)
	app.Get("/fetch-external-data", h.fetchExternal)
	app.Get("/user-with-external-data/:email", h.fetchWithUser)
	app.Post("/process-data/:message", h.processData)
	app.Get("/performance/:mode", h.performance)
	app.Get("/background/stats", h.backgroundStats)
}

// parseSeconds validates the raw path parameter before the core sees it.
// Negative values pass through: rejecting those is the core's contract.
func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errx.Validation("Duration must be a number of seconds").
			WithDetail("seconds", raw)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (h *ShowcaseHandlers) asyncDelay(c *fiber.Ctx) error {
	d, err := parseSeconds(c.Params("seconds"))
	if err != nil {
		return err
	}

	report, err := h.svc.Delay(c.Context(), d, simwork.ModeConcurrent)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Waited %s without blocking a worker", d),
		"report":  report,
	})
}

func (h *ShowcaseHandlers) syncDelay(c *fiber.Ctx) error {
	d, err := parseSeconds(c.Params("seconds"))
	if err != nil {
		return err
	}

	// Sequential mode occupies this handler's goroutine for the full
	// duration. That is the point of the endpoint.
	report, err := h.svc.Delay(c.Context(), d, simwork.ModeSequential)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Waited %s sequentially", d),
		"report":  report,
	})
}

func (h *ShowcaseHandlers) fetchExternal(c *fiber.Ctx) error {
	results := h.svc.FetchExternal(c.Context())
	return c.JSON(fiber.Map{
		"results": results,
		"message": "Fetched from multiple APIs concurrently",
	})
}

func (h *ShowcaseHandlers) fetchWithUser(c *fiber.Ctx) error {
	data, err := h.svc.FetchWithUser(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(data)
}

func (h *ShowcaseHandlers) processData(c *fiber.Ctx) error {
	ack, err := h.svc.SubmitBackground(c.Context(), c.Params("message"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Processing started in background",
		"ack":     ack,
	})
}

func (h *ShowcaseHandlers) performance(c *fiber.Ctx) error {
	mode, err := simwork.ParseMode(c.Params("mode"))
	if err != nil {
		return err
	}

	report, err := h.svc.Probe(c.Context(), mode)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"mode":       report.Mode,
		"total_time": fmt.Sprintf("%.2f seconds", report.TotalWallTime.Seconds()),
		"report":     report,
	})
}

func (h *ShowcaseHandlers) backgroundStats(c *fiber.Ctx) error {
	return c.JSON(h.svc.BackgroundStats())
}
