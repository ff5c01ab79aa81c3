package rest

import (
	"github.com/smartnotes/summarizer/domains/health"
	"github.com/smartnotes/summarizer/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	Service health.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	handler := Health{Service: service}

	app.Get("/health/status", handler.GetStatus)
	app.Post("/health/check-all", handler.CheckAll)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	records, err := h.Service.GetStatus(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: records,
	})
}

func (h *Health) CheckAll(c *fiber.Ctx) error {
	records, err := h.Service.CheckAll(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Verification completed for all entities",
		Results: records,
	})
}
