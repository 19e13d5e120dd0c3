package repository

import (
	"context"
	"errors"
	"strings"

	"postboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetVisible(ctx context.Context, id, viewerID uint) (*models.Post, error)
	ListVisible(ctx context.Context, viewerID uint, page models.Page) ([]models.Post, int64, error)
	ListByUser(ctx context.Context, authorID, viewerID uint, page models.Page) ([]models.Post, int64, error)
	ListByCategory(ctx context.Context, categoryType string, viewerID uint, page models.Page) ([]models.Post, int64, error)
	UpdateText(ctx context.Context, post *models.Post, text string) error
	SetVisibility(ctx context.Context, post *models.Post, visible bool) error
	Delete(ctx context.Context, post *models.Post) error
	FindOrCreateCategory(ctx context.Context, categoryType string) (*models.PostCategory, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = "posts.*, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count, " +
	"(SELECT COUNT(*) FROM post_reacts WHERE post_reacts.post_id = posts.id) AS reaction_count"

func visibleTo(viewerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.visibility = ? OR posts.user_id = ?", true, viewerID)
	}
}

func inCategory(categoryType string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN post_categories ON post_categories.id = posts.post_category_id").
			Where("post_categories.type = ?", categoryType)
	}
}

// hydrate loads the full read shape of a post: author, category, reactions
// with users and the comment tree down to reply reactions.
func hydrate(db *gorm.DB) *gorm.DB {
	return db.
		Select(postColumns).
		Preload("User", selectAuthor).
		Preload("Category").
		Preload("Reactions", newestFirst("id")).
		Preload("Reactions.User", selectAuthor).
		Preload("Comments", newestFirst("id")).
		Preload("Comments.User", selectAuthor).
		Preload("Comments.Reactions", newestFirst("id")).
		Preload("Comments.Reactions.User", selectAuthor).
		Preload("Comments.Replies", newestFirst("id")).
		Preload("Comments.Replies.User", selectAuthor).
		Preload("Comments.Replies.Reactions", newestFirst("id")).
		Preload("Comments.Replies.Reactions.User", selectAuthor)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	visible := post.Visibility
	// Visibility has a database default of true, so false is written as an
	// explicit update after the insert.
	post.Visibility = true
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		if !visible {
			return tx.Model(post).Update("visibility", false).Error
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID returns the bare post row, ignoring visibility.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

// GetVisible returns the hydrated post. A post hidden from viewerID is
// reported as not found.
func (r *postRepository) GetVisible(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(hydrate, visibleTo(viewerID)).
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) list(ctx context.Context, page models.Page, filters ...func(*gorm.DB) *gorm.DB) ([]models.Post, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Post{}).Scopes(filters...).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	posts := make([]models.Post, 0, page.Limit)
	err := db.Model(&models.Post{}).
		Scopes(filters...).
		Scopes(hydrate, paginate(page)).
		Order("posts.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *postRepository) ListVisible(ctx context.Context, viewerID uint, page models.Page) ([]models.Post, int64, error) {
	return r.list(ctx, page, visibleTo(viewerID))
}

func (r *postRepository) ListByUser(ctx context.Context, authorID, viewerID uint, page models.Page) ([]models.Post, int64, error) {
	return r.list(ctx, page, visibleTo(viewerID), func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.user_id = ?", authorID)
	})
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryType string, viewerID uint, page models.Page) ([]models.Post, int64, error) {
	return r.list(ctx, page, visibleTo(viewerID), inCategory(categoryType))
}

func (r *postRepository) UpdateText(ctx context.Context, post *models.Post, text string) error {
	if err := r.db.WithContext(ctx).Model(post).Update("text", text).Error; err != nil {
		return models.NewInternalError(err)
	}
	post.Text = text
	return nil
}

func (r *postRepository) SetVisibility(ctx context.Context, post *models.Post, visible bool) error {
	if err := r.db.WithContext(ctx).Model(post).Update("visibility", visible).Error; err != nil {
		return models.NewInternalError(err)
	}
	post.Visibility = visible
	return nil
}

// Delete removes the post; comments, replies and reactions go with it via
// ON DELETE CASCADE.
func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, post.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) FindOrCreateCategory(ctx context.Context, categoryType string) (*models.PostCategory, error) {
	categoryType = strings.TrimSpace(categoryType)
	db := r.db.WithContext(ctx)

	category := models.PostCategory{Type: categoryType}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&category).Error
	if err != nil && !isUniqueViolation(err) {
		return nil, models.NewInternalError(err)
	}

	if err := db.Where("type = ?", categoryType).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post category", categoryType)
		}
		return nil, models.NewInternalError(err)
	}
	return &category, nil
}
