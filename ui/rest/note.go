package rest

import (
	domainNote "github.com/smartnotes/summarizer/domains/note"
	"github.com/smartnotes/summarizer/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Note struct {
	Service domainNote.INoteUsecase
}

func InitRestNote(app fiber.Router, service domainNote.INoteUsecase) Note {
	rest := Note{Service: service}
	app.Post("/notes", rest.Create)
	app.Get("/notes", rest.List)
	app.Get("/notes/reminders", rest.Reminders)
	app.Get("/notes/categories", rest.Categories)
	app.Delete("/notes/categories/:category", rest.DeleteByCategory)
	app.Delete("/notes/tags/:tag", rest.DeleteByTag)
	app.Get("/notes/:id", rest.GetByID)
	app.Put("/notes/:id", rest.Update)
	app.Delete("/notes/:id", rest.Delete)

	return rest
}

func (handler *Note) Create(c *fiber.Ctx) error {
	var req domainNote.CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}
	if req.OwnerID == "" {
		req.OwnerID = callerID(c)
	}

	note, err := handler.Service.Create(c.UserContext(), req)
	utils.PanicIfNeeded(err)

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Note created",
		Results: note,
	})
}

func (handler *Note) List(c *fiber.Ctx) error {
	// ?tag= narrows the listing to notes carrying that tag
	if tag := c.Query("tag"); tag != "" {
		notes, err := handler.Service.SearchByTag(c.UserContext(), callerID(c), tag)
		utils.PanicIfNeeded(err)

		return c.JSON(utils.ResponseData{
			Status:  200,
			Code:    "SUCCESS",
			Message: "Notes retrieved",
			Results: notes,
		})
	}

	// ?category= narrows the listing to notes in matching categories
	if category := c.Query("category"); category != "" {
		notes, err := handler.Service.SearchByCategory(c.UserContext(), callerID(c), category)
		utils.PanicIfNeeded(err)

		return c.JSON(utils.ResponseData{
			Status:  200,
			Code:    "SUCCESS",
			Message: "Notes retrieved",
			Results: notes,
		})
	}

	notes, err := handler.Service.List(c.UserContext(), callerID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Notes retrieved",
		Results: notes,
	})
}

func (handler *Note) GetByID(c *fiber.Ctx) error {
	note, err := handler.Service.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Note retrieved",
		Results: note,
	})
}

func (handler *Note) Update(c *fiber.Ctx) error {
	var req domainNote.UpdateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	note, err := handler.Service.Update(c.UserContext(), c.Params("id"), req)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Note updated",
		Results: note,
	})
}

func (handler *Note) Delete(c *fiber.Ctx) error {
	err := handler.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Note deleted",
	})
}

func (handler *Note) Reminders(c *fiber.Ctx) error {
	reminders, err := handler.Service.Reminders(c.UserContext(), callerID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Reminders retrieved",
		Results: reminders,
	})
}

func (handler *Note) Categories(c *fiber.Ctx) error {
	categories, err := handler.Service.Categories(c.UserContext(), callerID(c))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Categories retrieved",
		Results: categories,
	})
}

func (handler *Note) DeleteByCategory(c *fiber.Ctx) error {
	deleted, err := handler.Service.DeleteByCategory(c.UserContext(), callerID(c), c.Params("category"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Notes deleted",
		Results: fiber.Map{"deleted": deleted},
	})
}

func (handler *Note) DeleteByTag(c *fiber.Ctx) error {
	deleted, err := handler.Service.DeleteByTag(c.UserContext(), callerID(c), c.Params("tag"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Notes deleted",
		Results: fiber.Map{"deleted": deleted},
	})
}

func callerID(c *fiber.Ctx) string {
	if username, ok := c.Locals("username").(string); ok {
		return username
	}
	return ""
}
