package server

import (
	"postboard/internal/models"
	"postboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Text     string `json:"text" validate:"required,min=6"`
	Category string `json:"category" validate:"omitempty,min=3,max=100"`
}

type postRef struct {
	PostID uint `json:"postId" query:"postId" validate:"gt=0"`
}

type updatePostRequest struct {
	PostID uint   `json:"postId" validate:"gt=0"`
	Text   string `json:"text" validate:"required,min=6"`
}

type reactPostRequest struct {
	PostID    uint   `json:"postId" validate:"gt=0"`
	ReactType string `json:"reactType" validate:"reacttype"`
}

// CreatePost handles POST /api/create-post
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), actorFrom(c), service.CreatePostInput{
		Text:     req.Text,
		Category: req.Category,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Create post successfully", "post", post)
}

// GetPosts handles GET /api/get-post. With postId it returns that post,
// otherwise a page of posts visible to the caller.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actor := actorFrom(c)

	if c.Query("postId") != "" {
		var ref postRef
		if err := bind(c, &ref); err != nil {
			return models.RespondWithError(c, err)
		}
		post, err := s.postService.GetPost(ctx, actor, ref.PostID)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return respond(c, fiber.StatusOK, "Post retrieved successfully", "post", post)
	}

	page, err := parsePage(c, defaultPostLimit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	posts, err := s.postService.ListPosts(ctx, actor, page)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondPaged(c, "Posts retrieved successfully", "posts", posts)
}

// GetPostsByUser handles GET /api/get-post-user
func (s *Server) GetPostsByUser(c *fiber.Ctx) error {
	var req struct {
		UserID uint `query:"userId" json:"userId" validate:"gt=0"`
	}
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}
	page, err := parsePage(c, defaultPostLimit)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	posts, err := s.postService.ListPostsByUser(c.UserContext(), actorFrom(c), req.UserID, page)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondPaged(c, "Posts retrieved successfully", "posts", posts)
}

// GetPostsByCategory handles GET /api/get-post-category
func (s *Server) GetPostsByCategory(c *fiber.Ctx) error {
	page, err := parsePage(c, defaultPostLimit)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	posts, err := s.postService.ListPostsByCategory(c.UserContext(), actorFrom(c), c.Query("category"), page)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondPaged(c, "Posts retrieved successfully", "posts", posts)
}

// UpdatePost handles POST /api/update-post
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req updatePostRequest
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), actorFrom(c), req.PostID, req.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Update post successfully", "post", post)
}

// DeletePost handles POST and DELETE /api/delete-post
func (s *Server) DeletePost(c *fiber.Ctx) error {
	var ref postRef
	if err := bind(c, &ref); err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.DeletePost(c.UserContext(), actorFrom(c), ref.PostID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Delete post successfully", "deletedPost", post)
}

// ReactPost handles POST /api/post-react
func (s *Server) ReactPost(c *fiber.Ctx) error {
	var req reactPostRequest
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}
	kind, _ := models.ParseReactType(req.ReactType)

	result, err := s.postService.ReactToPost(c.UserContext(), actorFrom(c), req.PostID, kind)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondToggle(c, "React successfully", result)
}

// TogglePostVisibility handles POST /api/post-visibility
func (s *Server) TogglePostVisibility(c *fiber.Ctx) error {
	var ref postRef
	if err := bind(c, &ref); err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.TogglePostVisibility(c.UserContext(), actorFrom(c), ref.PostID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Update post visibility successfully", "post", post)
}
