package rest

import (
	"github.com/smartnotes/summarizer/pkg/genworker"
	"github.com/smartnotes/summarizer/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Monitoring struct {
	Pool *genworker.Pool
}

func InitRestMonitoring(app fiber.Router, pool *genworker.Pool) Monitoring {
	handler := Monitoring{Pool: pool}

	app.Get("/monitoring/workers", handler.GetWorkerPoolStats)

	return handler
}

// GetWorkerPoolStats returns real-time generation worker pool statistics
func (h *Monitoring) GetWorkerPoolStats(c *fiber.Ctx) error {
	if h.Pool == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
			Status:  503,
			Code:    "SERVICE_UNAVAILABLE",
			Message: "Worker pool not initialized",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Worker pool stats retrieved",
		Results: h.Pool.GetStats(),
	})
}
