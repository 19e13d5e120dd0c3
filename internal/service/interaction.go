// Package service implements the content and interaction rules shared by
// posts, comments and replies.
package service

import (
	"context"
	"errors"
	"fmt"

	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"
)

// Event types delivered to content owners.
const (
	EventPostReacted    = "post_reacted"
	EventCommentCreated = "comment_created"
	EventCommentReacted = "comment_reacted"
	EventReplyCreated   = "reply_created"
	EventReplyReacted   = "reply_reacted"
)

// Notifier delivers a realtime event to one user.
type Notifier interface {
	Notify(ctx context.Context, userID uint, eventType string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, uint, string, interface{}) {}

func orNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// visiblePost loads a post actor may read; hidden posts are NotFound.
func visiblePost(ctx context.Context, posts repository.PostRepository, actor models.Actor, postID uint) (*models.Post, error) {
	post, err := posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(actor.ID) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

// visibleComment loads a comment whose post actor may read. Comments under a
// hidden post are NotFound to everyone but the post author.
func visibleComment(ctx context.Context, comments repository.CommentRepository, posts repository.PostRepository, actor models.Actor, commentID uint) (*models.Comment, error) {
	comment, err := comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := visiblePost(ctx, posts, actor, comment.PostID); err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, err
	}
	return comment, nil
}

// notifyOwner tells ownerID about something actor did, unless they are the
// same person.
func notifyOwner(ctx context.Context, n Notifier, ownerID uint, actor models.Actor, eventType string, payload map[string]interface{}) {
	if ownerID == actor.ID {
		return
	}
	payload["actor"] = actor
	n.Notify(ctx, ownerID, eventType, payload)
}

// authorize allows actor when their id is one of allowed.
func authorize(actor models.Actor, action, resource string, allowed ...uint) error {
	for _, id := range allowed {
		if id != 0 && id == actor.ID {
			return nil
		}
	}
	return models.NewForbiddenError(fmt.Sprintf("You are not authorized to %s this %s", action, resource))
}

// toggleReaction removes actor's reaction on targetID if one exists, of any
// kind, and otherwise creates one of the given kind. The caller has already
// checked that the target exists.
func toggleReaction[R any, P models.ReactionRecord[R]](
	ctx context.Context,
	repo repository.ReactionRepository[R],
	target string,
	targetID uint,
	actor models.Actor,
	kind models.ReactType,
) (*models.ReactionToggle[R], error) {
	existing, err := repo.Find(ctx, targetID, actor.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := repo.Delete(ctx, existing); err != nil {
			return nil, err
		}
		observability.ReactionToggles.WithLabelValues(target, string(models.ActionDeleted)).Inc()
		return &models.ReactionToggle[R]{Action: models.ActionDeleted, Reaction: existing}, nil
	}

	reaction := new(R)
	P(reaction).Bind(targetID, actor.ID, kind)
	err = repo.Create(ctx, reaction)
	if errors.Is(err, repository.ErrDuplicate) {
		// A concurrent toggle inserted the same pair first.
		reaction, err = repo.Find(ctx, targetID, actor.ID)
		if err == nil && reaction == nil {
			err = models.NewInternalError(fmt.Errorf("%s reaction %d/%d missing after duplicate insert", target, targetID, actor.ID))
		}
	}
	if err != nil {
		return nil, err
	}

	P(reaction).AttachUser(actor.Author())
	observability.ReactionToggles.WithLabelValues(target, string(models.ActionCreated)).Inc()
	return &models.ReactionToggle[R]{Action: models.ActionCreated, Reaction: reaction}, nil
}

func paged[T any](items []T, total int64, page models.Page) *models.Paged[T] {
	if items == nil {
		items = []T{}
	}
	return &models.Paged[T]{Items: items, Meta: models.NewPageMeta(page, total)}
}
