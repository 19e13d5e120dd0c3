package repository

import (
	"context"

	"postboard/internal/models"

	"gorm.io/gorm"
)

// ReplyRepository defines persistence operations for replies.
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) error
	GetByID(ctx context.Context, id uint) (*models.Reply, error)
	GetWithComment(ctx context.Context, id uint) (*models.Reply, error)
	ListByComment(ctx context.Context, commentID uint, page models.Page) ([]models.Reply, int64, error)
	UpdateText(ctx context.Context, reply *models.Reply, text string) error
	Delete(ctx context.Context, reply *models.Reply) error
}

type replyRepository struct {
	db *gorm.DB
}

// NewReplyRepository returns a new ReplyRepository implementation.
func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) error {
	if err := r.db.WithContext(ctx).Omit("Comment", "User").Create(reply).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *replyRepository) GetByID(ctx context.Context, id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).First(&reply, id).Error; err != nil {
		return nil, lookupError(err, "Reply", id)
	}
	return &reply, nil
}

// GetWithComment loads the reply and its parent comment for authorization.
func (r *replyRepository) GetWithComment(ctx context.Context, id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).Preload("Comment").First(&reply, id).Error; err != nil {
		return nil, lookupError(err, "Reply", id)
	}
	return &reply, nil
}

func (r *replyRepository) ListByComment(ctx context.Context, commentID uint, page models.Page) ([]models.Reply, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Reply{}).Where("comment_id = ?", commentID).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	replies := make([]models.Reply, 0, page.Limit)
	err := db.Model(&models.Reply{}).
		Select("replies.*, (SELECT COUNT(*) FROM reply_reacts WHERE reply_reacts.reply_id = replies.id) AS reaction_count").
		Where("replies.comment_id = ?", commentID).
		Preload("User", selectAuthor).
		Order("replies.id DESC").
		Scopes(paginate(page)).
		Find(&replies).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return replies, total, nil
}

func (r *replyRepository) UpdateText(ctx context.Context, reply *models.Reply, text string) error {
	if err := r.db.WithContext(ctx).Model(reply).Update("text", text).Error; err != nil {
		return models.NewInternalError(err)
	}
	reply.Text = text
	return nil
}

func (r *replyRepository) Delete(ctx context.Context, reply *models.Reply) error {
	if err := r.db.WithContext(ctx).Delete(&models.Reply{}, reply.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
