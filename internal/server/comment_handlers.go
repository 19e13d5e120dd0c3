package server

import (
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	PostID uint   `json:"postId" validate:"gt=0"`
	Text   string `json:"text" validate:"required,min=1"`
}

type commentRef struct {
	CommentID uint `json:"commentId" query:"commentId" validate:"gt=0"`
}

type updateCommentRequest struct {
	CommentID uint   `json:"commentId" validate:"gt=0"`
	Text      string `json:"text" validate:"required,min=1"`
}

type reactCommentRequest struct {
	CommentID uint   `json:"commentId" validate:"gt=0"`
	ReactType string `json:"reactType" validate:"reacttype"`
}

// CreateComment handles POST /api/create-comment
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req createCommentRequest
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), actorFrom(c), req.PostID, req.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Comment successfully", "newComment", comment)
}

// GetComments handles GET /api/get-comment
func (s *Server) GetComments(c *fiber.Ctx) error {
	var ref postRef
	if err := bind(c, &ref); err != nil {
		return models.RespondWithError(c, err)
	}
	page, err := parsePage(c, defaultCommentLimit)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	comments, err := s.commentService.ListComments(c.UserContext(), actorFrom(c), ref.PostID, page)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondPaged(c, "Comments retrieved successfully", "comments", comments)
}

// UpdateComment handles POST /api/update-comment
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	var req updateCommentRequest
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), actorFrom(c), req.CommentID, req.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Update comment successfully", "comment", comment)
}

// DeleteComment handles DELETE /api/delete-comment
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	var ref commentRef
	if err := bind(c, &ref); err != nil {
		return models.RespondWithError(c, err)
	}

	comment, err := s.commentService.DeleteComment(c.UserContext(), actorFrom(c), ref.CommentID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Delete comment successfully", "deletedComment", comment)
}

// ReactComment handles POST /api/comment-react
func (s *Server) ReactComment(c *fiber.Ctx) error {
	var req reactCommentRequest
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}
	kind, _ := models.ParseReactType(req.ReactType)

	result, err := s.commentService.ReactToComment(c.UserContext(), actorFrom(c), req.CommentID, kind)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondToggle(c, "Reacted successfully", result)
}
