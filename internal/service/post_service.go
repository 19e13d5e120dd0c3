package service

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"
)

// DefaultListCategory is listed when get-post-category names no category.
const DefaultListCategory = "Travel"

type PostService struct {
	postRepo     repository.PostRepository
	reactionRepo repository.ReactionRepository[models.PostReaction]
	notifier     Notifier
}

type CreatePostInput struct {
	Text     string
	Category string
}

func NewPostService(
	postRepo repository.PostRepository,
	reactionRepo repository.ReactionRepository[models.PostReaction],
	notifier Notifier,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		notifier:     orNoop(notifier),
	}
}

func (s *PostService) CreatePost(ctx context.Context, actor models.Actor, in CreatePostInput) (*models.Post, error) {
	post := &models.Post{
		UserID:         actor.ID,
		PostCategoryID: models.DefaultCategoryID,
		Text:           in.Text,
		Visibility:     true,
	}
	if in.Category != "" {
		category, err := s.postRepo.FindOrCreateCategory(ctx, in.Category)
		if err != nil {
			return nil, err
		}
		post.PostCategoryID = category.ID
		post.Category = category
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("post", "create").Inc()

	post.User = actor.Author()
	post.Comments = []models.Comment{}
	post.Reactions = []models.PostReaction{}
	return post, nil
}

// GetPost returns a hydrated post. Posts hidden from actor are NotFound.
func (s *PostService) GetPost(ctx context.Context, actor models.Actor, postID uint) (*models.Post, error) {
	return s.postRepo.GetVisible(ctx, postID, actor.ID)
}

func (s *PostService) ListPosts(ctx context.Context, actor models.Actor, page models.Page) (*models.Paged[models.Post], error) {
	posts, total, err := s.postRepo.ListVisible(ctx, actor.ID, page)
	if err != nil {
		return nil, err
	}
	return paged(posts, total, page), nil
}

func (s *PostService) ListPostsByUser(ctx context.Context, actor models.Actor, userID uint, page models.Page) (*models.Paged[models.Post], error) {
	posts, total, err := s.postRepo.ListByUser(ctx, userID, actor.ID, page)
	if err != nil {
		return nil, err
	}
	return paged(posts, total, page), nil
}

func (s *PostService) ListPostsByCategory(ctx context.Context, actor models.Actor, category string, page models.Page) (*models.Paged[models.Post], error) {
	if category == "" {
		category = DefaultListCategory
	}
	posts, total, err := s.postRepo.ListByCategory(ctx, category, actor.ID, page)
	if err != nil {
		return nil, err
	}
	return paged(posts, total, page), nil
}

func (s *PostService) UpdatePost(ctx context.Context, actor models.Actor, postID uint, text string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, "update", "post", post.OwnerID()); err != nil {
		return nil, err
	}

	if err := s.postRepo.UpdateText(ctx, post, text); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("post", "update").Inc()
	post.User = actor.Author()
	return post, nil
}

// DeletePost removes an owned post with its comments, replies and reactions
// and returns the deleted row.
func (s *PostService) DeletePost(ctx context.Context, actor models.Actor, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, "delete", "post", post.OwnerID()); err != nil {
		return nil, err
	}

	if err := s.postRepo.Delete(ctx, post); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("post", "delete").Inc()
	return post, nil
}

func (s *PostService) TogglePostVisibility(ctx context.Context, actor models.Actor, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, "change visibility of", "post", post.OwnerID()); err != nil {
		return nil, err
	}

	if err := s.postRepo.SetVisibility(ctx, post, !post.Visibility); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("post", "visibility").Inc()
	return post, nil
}

// ReactToPost toggles actor's reaction on a post they can see.
func (s *PostService) ReactToPost(ctx context.Context, actor models.Actor, postID uint, kind models.ReactType) (*models.ReactionToggle[models.PostReaction], error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(actor.ID) {
		return nil, models.NewNotFoundError("Post", postID)
	}

	result, err := toggleReaction[models.PostReaction](ctx, s.reactionRepo, "post", post.ID, actor, kind)
	if err != nil {
		return nil, err
	}
	if result.Action == models.ActionCreated {
		notifyOwner(ctx, s.notifier, post.OwnerID(), actor, EventPostReacted, map[string]interface{}{
			"post_id":    post.ID,
			"react_type": result.Reaction.ReactType,
		})
	}
	return result, nil
}
