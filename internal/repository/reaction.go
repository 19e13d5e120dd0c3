package repository

import (
	"context"
	"errors"

	"postboard/internal/models"

	"gorm.io/gorm"
)

// ReactionRepository stores one reaction family (post, comment or reply
// reactions), keyed by target id and user id.
type ReactionRepository[R any] interface {
	// Find returns nil, nil when userID has not reacted to targetID.
	Find(ctx context.Context, targetID, userID uint) (*R, error)
	// Create returns ErrDuplicate when the (target, user) pair already exists.
	Create(ctx context.Context, reaction *R) error
	Delete(ctx context.Context, reaction *R) error
}

type reactionRepository[R any] struct {
	db           *gorm.DB
	targetColumn string
}

// NewPostReactionRepository returns the repository for post_reacts.
func NewPostReactionRepository(db *gorm.DB) ReactionRepository[models.PostReaction] {
	return &reactionRepository[models.PostReaction]{db: db, targetColumn: "post_id"}
}

// NewCommentReactionRepository returns the repository for comment_reacts.
func NewCommentReactionRepository(db *gorm.DB) ReactionRepository[models.CommentReaction] {
	return &reactionRepository[models.CommentReaction]{db: db, targetColumn: "comment_id"}
}

// NewReplyReactionRepository returns the repository for reply_reacts.
func NewReplyReactionRepository(db *gorm.DB) ReactionRepository[models.ReplyReaction] {
	return &reactionRepository[models.ReplyReaction]{db: db, targetColumn: "reply_id"}
}

func (r *reactionRepository[R]) Find(ctx context.Context, targetID, userID uint) (*R, error) {
	var reaction R
	err := r.db.WithContext(ctx).
		Where(r.targetColumn+" = ? AND user_id = ?", targetID, userID).
		First(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &reaction, nil
}

func (r *reactionRepository[R]) Create(ctx context.Context, reaction *R) error {
	err := r.db.WithContext(ctx).Omit("User").Create(reaction).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reactionRepository[R]) Delete(ctx context.Context, reaction *R) error {
	if err := r.db.WithContext(ctx).Delete(reaction).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
