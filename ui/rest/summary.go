package rest

import (
	domainNote "github.com/smartnotes/summarizer/domains/note"
	"github.com/smartnotes/summarizer/pkg/utils"
	"github.com/smartnotes/summarizer/sumengine/domain"
	"github.com/gofiber/fiber/v2"
)

type Summary struct {
	Service domain.ISummaryUsecase
	Notes   domainNote.INoteUsecase
}

func InitRestSummary(app fiber.Router, service domain.ISummaryUsecase, notes domainNote.INoteUsecase) Summary {
	rest := Summary{Service: service, Notes: notes}
	app.Post("/notes/:id/summary", rest.Request)
	app.Get("/notes/:id/summary", rest.GetCached)
	app.Delete("/notes/:id/summary", rest.Invalidate)
	app.Post("/notes/:id/summary/cancel", rest.Cancel)
	app.Post("/summary/cancel-all", rest.CancelAll)
	app.Get("/summary/cache/stats", rest.CacheStats)
	app.Post("/summary/cache/clear", rest.ClearCache)

	return rest
}

// Request generates (or returns the cached) summary for a note. The call
// blocks through the debounce window and any retries.
func (handler *Summary) Request(c *fiber.Ctx) error {
	note, err := handler.Notes.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	result, err := handler.Service.RequestSummary(c.UserContext(), domain.Document{
		ID:      note.ID,
		Content: note.Content,
	})
	if err != nil {
		failure := domain.AsFailure(err)
		return c.Status(failureStatus(failure)).JSON(utils.ResponseData{
			Status:  failureStatus(failure),
			Code:    string(failure.Kind),
			Message: failure.Error(),
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Summary generated",
		Results: SummaryResponse{
			DocumentID:  note.ID,
			Summary:     result.Summary,
			ModelUsed:   result.ModelUsed,
			FromCache:   result.FromCache,
			GeneratedAt: result.GeneratedAt,
		},
	})
}

func (handler *Summary) GetCached(c *fiber.Ctx) error {
	note, err := handler.Notes.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	entry := handler.Service.GetCachedSummary(note.ID, note.Content)
	if entry == nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ResponseData{
			Status:  404,
			Code:    "NOT_FOUND",
			Message: "No valid cached summary for this note",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cached summary retrieved",
		Results: CachedSummaryResponse{
			DocumentID:  entry.DocumentID,
			Summary:     entry.Summary,
			ModelUsed:   entry.ModelUsed,
			Fingerprint: entry.Fingerprint,
			CreatedAt:   entry.CreatedAt,
		},
	})
}

func (handler *Summary) Invalidate(c *fiber.Ctx) error {
	handler.Service.ClearCachedSummary(c.UserContext(), c.Params("id"))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cached summary invalidated",
	})
}

func (handler *Summary) Cancel(c *fiber.Ctx) error {
	cancelled := handler.Service.CancelPendingRequest(c.Params("id"))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cancellation processed",
		Results: fiber.Map{"cancelled": cancelled},
	})
}

func (handler *Summary) CancelAll(c *fiber.Ctx) error {
	handler.Service.CancelAllPendingRequests()

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "All pending summary requests cancelled",
	})
}

func (handler *Summary) CacheStats(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Summary cache stats retrieved",
		Results: handler.Service.CacheStats(),
	})
}

func (handler *Summary) ClearCache(c *fiber.Ctx) error {
	handler.Service.ClearAllCaches(c.UserContext())

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Summary cache cleared",
	})
}

// failureStatus maps summary failures onto HTTP status codes.
func failureStatus(f *domain.Failure) int {
	switch f.Kind {
	case domain.FailureContentTooShort, domain.FailureContentTooLong:
		return fiber.StatusUnprocessableEntity
	case domain.FailureUnauthenticated:
		return fiber.StatusUnauthorized
	case domain.FailurePermissionDenied:
		return fiber.StatusForbidden
	case domain.FailureRateLimited:
		return fiber.StatusTooManyRequests
	case domain.FailureOffline, domain.FailureNetwork, domain.FailureServiceUnavailable:
		return fiber.StatusServiceUnavailable
	case domain.FailureTimeout:
		return fiber.StatusGatewayTimeout
	case domain.FailureCancelled:
		return 499 // client closed request
	default:
		return fiber.StatusInternalServerError
	}
}
