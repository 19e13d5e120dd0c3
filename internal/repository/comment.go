package repository

import (
	"context"

	"postboard/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetWithPost(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, page models.Page) ([]models.Comment, int64, error)
	UpdateText(ctx context.Context, comment *models.Comment, text string) error
	Delete(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Post", "User").Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	return &comment, nil
}

// GetWithPost loads the comment and its parent post for authorization.
func (r *commentRepository) GetWithPost(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Post").First(&comment, id).Error; err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, page models.Page) ([]models.Comment, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	comments := make([]models.Comment, 0, page.Limit)
	err := db.Model(&models.Comment{}).
		Select("comments.*, (SELECT COUNT(*) FROM comment_reacts WHERE comment_reacts.comment_id = comments.id) AS reaction_count").
		Where("comments.post_id = ?", postID).
		Preload("User", selectAuthor).
		Order("comments.id DESC").
		Scopes(paginate(page)).
		Find(&comments).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

func (r *commentRepository) UpdateText(ctx context.Context, comment *models.Comment, text string) error {
	if err := r.db.WithContext(ctx).Model(comment).Update("text", text).Error; err != nil {
		return models.NewInternalError(err)
	}
	comment.Text = text
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, comment.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
