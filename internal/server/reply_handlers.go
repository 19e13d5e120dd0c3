package server

import (
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createReplyRequest struct {
	CommentID uint   `json:"commentId" validate:"gt=0"`
	Text      string `json:"text" validate:"required,min=1"`
}

type replyRef struct {
	ReplyID uint `json:"replyId" query:"replyId" validate:"gt=0"`
}

type updateReplyRequest struct {
	ReplyID uint   `json:"replyId" validate:"gt=0"`
	Text    string `json:"text" validate:"required,min=1"`
}

type reactReplyRequest struct {
	ReplyID   uint   `json:"replyId" validate:"gt=0"`
	ReactType string `json:"reactType" validate:"reacttype"`
}

// CreateReply handles POST /api/create-reply
func (s *Server) CreateReply(c *fiber.Ctx) error {
	var req createReplyRequest
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	reply, err := s.replyService.CreateReply(c.UserContext(), actorFrom(c), req.CommentID, req.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Reply created successfully", "newReply", reply)
}

// GetReplies handles GET /api/get-replies
func (s *Server) GetReplies(c *fiber.Ctx) error {
	var ref commentRef
	if err := bind(c, &ref); err != nil {
		return models.RespondWithError(c, err)
	}
	page, err := parsePage(c, defaultReplyLimit)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	replies, err := s.replyService.ListReplies(c.UserContext(), actorFrom(c), ref.CommentID, page)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondPaged(c, "Replies retrieved successfully", "replies", replies)
}

// UpdateReply handles POST /api/update-reply
func (s *Server) UpdateReply(c *fiber.Ctx) error {
	var req updateReplyRequest
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	reply, err := s.replyService.UpdateReply(c.UserContext(), actorFrom(c), req.ReplyID, req.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Update reply successfully", "reply", reply)
}

// DeleteReply handles DELETE /api/delete-reply
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	var ref replyRef
	if err := bind(c, &ref); err != nil {
		return models.RespondWithError(c, err)
	}

	reply, err := s.replyService.DeleteReply(c.UserContext(), actorFrom(c), ref.ReplyID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Delete reply successfully", "deletedReply", reply)
}

// ReactReply handles POST /api/reply-react
func (s *Server) ReactReply(c *fiber.Ctx) error {
	var req reactReplyRequest
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}
	kind, _ := models.ParseReactType(req.ReactType)

	result, err := s.replyService.ReactToReply(c.UserContext(), actorFrom(c), req.ReplyID, kind)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondToggle(c, "Reacted successfully", result)
}
