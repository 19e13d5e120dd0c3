package service

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"
)

type CommentService struct {
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	reactionRepo repository.ReactionRepository[models.CommentReaction]
	notifier     Notifier
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	reactionRepo repository.ReactionRepository[models.CommentReaction],
	notifier Notifier,
) *CommentService {
	return &CommentService{
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		notifier:     orNoop(notifier),
	}
}

func (s *CommentService) CreateComment(ctx context.Context, actor models.Actor, postID uint, text string) (*models.Comment, error) {
	post, err := visiblePost(ctx, s.postRepo, actor, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: post.ID, UserID: actor.ID, Text: text}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("comment", "create").Inc()

	comment.User = actor.Author()
	comment.Replies = []models.Reply{}
	comment.Reactions = []models.CommentReaction{}

	notifyOwner(ctx, s.notifier, post.OwnerID(), actor, EventCommentCreated, map[string]interface{}{
		"post_id":    post.ID,
		"comment_id": comment.ID,
	})
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, actor models.Actor, postID uint, page models.Page) (*models.Paged[models.Comment], error) {
	if _, err := visiblePost(ctx, s.postRepo, actor, postID); err != nil {
		return nil, err
	}
	comments, total, err := s.commentRepo.ListByPost(ctx, postID, page)
	if err != nil {
		return nil, err
	}
	return paged(comments, total, page), nil
}

// UpdateComment is allowed for the comment author only.
func (s *CommentService) UpdateComment(ctx context.Context, actor models.Actor, commentID uint, text string) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, "update", "comment", comment.OwnerID()); err != nil {
		return nil, err
	}

	if err := s.commentRepo.UpdateText(ctx, comment, text); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("comment", "update").Inc()
	comment.User = actor.Author()
	return comment, nil
}

// DeleteComment is allowed for the comment author and the post author.
func (s *CommentService) DeleteComment(ctx context.Context, actor models.Actor, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetWithPost(ctx, commentID)
	if err != nil {
		return nil, err
	}
	allowed := []uint{comment.OwnerID()}
	if comment.Post != nil {
		allowed = append(allowed, comment.Post.OwnerID())
	}
	if err := authorize(actor, "delete", "comment", allowed...); err != nil {
		return nil, err
	}

	if err := s.commentRepo.Delete(ctx, comment); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("comment", "delete").Inc()
	comment.Post = nil
	return comment, nil
}

// ReactToComment toggles actor's reaction on a comment under a post they can see.
func (s *CommentService) ReactToComment(ctx context.Context, actor models.Actor, commentID uint, kind models.ReactType) (*models.ReactionToggle[models.CommentReaction], error) {
	comment, err := visibleComment(ctx, s.commentRepo, s.postRepo, actor, commentID)
	if err != nil {
		return nil, err
	}

	result, err := toggleReaction[models.CommentReaction](ctx, s.reactionRepo, "comment", comment.ID, actor, kind)
	if err != nil {
		return nil, err
	}
	if result.Action == models.ActionCreated {
		notifyOwner(ctx, s.notifier, comment.OwnerID(), actor, EventCommentReacted, map[string]interface{}{
			"post_id":    comment.PostID,
			"comment_id": comment.ID,
			"react_type": result.Reaction.ReactType,
		})
	}
	return result, nil
}
