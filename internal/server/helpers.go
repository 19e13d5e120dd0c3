// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"postboard/internal/models"
	"postboard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	localsUserID = "userID"
	localsActor  = "actor"
	localsClaims = "claims"
)

// Default page sizes per listing.
const (
	defaultPostLimit    = 5
	defaultCommentLimit = 2
	defaultReplyLimit   = 2
	defaultUserLimit    = 10
)

type pageQuery struct {
	Page  *int `query:"page"`
	Limit *int `query:"limit"`
}

// parsePage reads page and limit from the query string. Missing values take
// their defaults; present values must be positive.
func parsePage(c *fiber.Ctx, defaultLimit int) (models.Page, error) {
	var q pageQuery
	if err := c.QueryParser(&q); err != nil {
		return models.Page{}, models.NewFieldValidationError(map[string]string{
			"page": "page and limit must be integers",
		})
	}
	number, limit := 1, defaultLimit
	if q.Page != nil {
		number = *q.Page
	}
	if q.Limit != nil {
		limit = *q.Limit
	}
	return models.NewPage(number, limit)
}

// bind decodes query parameters and, when present, the JSON body into req,
// then validates it.
func bind(c *fiber.Ctx, req interface{}) error {
	if err := c.QueryParser(req); err != nil {
		return models.NewValidationError("Invalid query parameters")
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return models.NewValidationError("Invalid request body")
		}
	}
	return validation.Struct(req)
}

// actorFrom returns the authenticated actor stored by AuthRequired.
func actorFrom(c *fiber.Ctx) models.Actor {
	actor, _ := c.Locals(localsActor).(models.Actor)
	return actor
}

// respond writes the success envelope {message, key: payload}.
func respond(c *fiber.Ctx, status int, message, key string, payload interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		key:       payload,
	})
}

// respondPaged writes {message, key: items, meta}.
func respondPaged[T any](c *fiber.Ctx, message, key string, page *models.Paged[T]) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": message,
		key:       page.Items,
		"meta":    page.Meta,
	})
}

// respondToggle writes {message, action, reaction}.
func respondToggle[R any](c *fiber.Ctx, createdMessage string, result *models.ReactionToggle[R]) error {
	message := "Undo react successfully"
	if result.Action == models.ActionCreated {
		message = createdMessage
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":  message,
		"action":   result.Action,
		"reaction": result.Reaction,
	})
}
