package server

import (
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UsersByPostCount handles GET /api/users-by-post-count
func (s *Server) UsersByPostCount(c *fiber.Ctx) error {
	page, err := parsePage(c, defaultUserLimit)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	users, err := s.userService.ListUsersByPostCount(c.UserContext(), page)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondPaged(c, "Users retrieved successfully", "users", users)
}
