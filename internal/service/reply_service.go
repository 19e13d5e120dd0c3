package service

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"
)

type ReplyService struct {
	replyRepo    repository.ReplyRepository
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	reactionRepo repository.ReactionRepository[models.ReplyReaction]
	notifier     Notifier
}

func NewReplyService(
	replyRepo repository.ReplyRepository,
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	reactionRepo repository.ReactionRepository[models.ReplyReaction],
	notifier Notifier,
) *ReplyService {
	return &ReplyService{
		replyRepo:    replyRepo,
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		notifier:     orNoop(notifier),
	}
}

func (s *ReplyService) CreateReply(ctx context.Context, actor models.Actor, commentID uint, text string) (*models.Reply, error) {
	comment, err := visibleComment(ctx, s.commentRepo, s.postRepo, actor, commentID)
	if err != nil {
		return nil, err
	}

	reply := &models.Reply{CommentID: comment.ID, UserID: actor.ID, Text: text}
	if err := s.replyRepo.Create(ctx, reply); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("reply", "create").Inc()

	reply.User = actor.Author()
	reply.Reactions = []models.ReplyReaction{}

	notifyOwner(ctx, s.notifier, comment.OwnerID(), actor, EventReplyCreated, map[string]interface{}{
		"post_id":    comment.PostID,
		"comment_id": comment.ID,
		"reply_id":   reply.ID,
	})
	return reply, nil
}

func (s *ReplyService) ListReplies(ctx context.Context, actor models.Actor, commentID uint, page models.Page) (*models.Paged[models.Reply], error) {
	if _, err := visibleComment(ctx, s.commentRepo, s.postRepo, actor, commentID); err != nil {
		return nil, err
	}
	replies, total, err := s.replyRepo.ListByComment(ctx, commentID, page)
	if err != nil {
		return nil, err
	}
	return paged(replies, total, page), nil
}

// UpdateReply is allowed for the reply author only.
func (s *ReplyService) UpdateReply(ctx context.Context, actor models.Actor, replyID uint, text string) (*models.Reply, error) {
	reply, err := s.replyRepo.GetByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, "update", "reply", reply.OwnerID()); err != nil {
		return nil, err
	}

	if err := s.replyRepo.UpdateText(ctx, reply, text); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("reply", "update").Inc()
	reply.User = actor.Author()
	return reply, nil
}

// DeleteReply is allowed for the reply author and the comment author.
func (s *ReplyService) DeleteReply(ctx context.Context, actor models.Actor, replyID uint) (*models.Reply, error) {
	reply, err := s.replyRepo.GetWithComment(ctx, replyID)
	if err != nil {
		return nil, err
	}
	allowed := []uint{reply.OwnerID()}
	if reply.Comment != nil {
		allowed = append(allowed, reply.Comment.OwnerID())
	}
	if err := authorize(actor, "delete", "reply", allowed...); err != nil {
		return nil, err
	}

	if err := s.replyRepo.Delete(ctx, reply); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("reply", "delete").Inc()
	reply.Comment = nil
	return reply, nil
}

func (s *ReplyService) ReactToReply(ctx context.Context, actor models.Actor, replyID uint, kind models.ReactType) (*models.ReactionToggle[models.ReplyReaction], error) {
	reply, err := s.replyRepo.GetByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if _, err := visibleComment(ctx, s.commentRepo, s.postRepo, actor, reply.CommentID); err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return nil, models.NewNotFoundError("Reply", replyID)
		}
		return nil, err
	}

	result, err := toggleReaction[models.ReplyReaction](ctx, s.reactionRepo, "reply", reply.ID, actor, kind)
	if err != nil {
		return nil, err
	}
	if result.Action == models.ActionCreated {
		notifyOwner(ctx, s.notifier, reply.OwnerID(), actor, EventReplyReacted, map[string]interface{}{
			"comment_id": reply.CommentID,
			"reply_id":   reply.ID,
			"react_type": result.Reaction.ReactType,
		})
	}
	return result, nil
}
