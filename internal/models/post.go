package models

import "time"

// DefaultCategoryID is the seeded "General" category assigned to posts that
// do not name one.
const DefaultCategoryID uint = 1

// PostCategory groups posts by a free-form type label.
type PostCategory struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Type string `gorm:"size:100;uniqueIndex;not null" json:"type"`
}

// Post represents a post authored by a user.
type Post struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	User           *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	PostCategoryID uint           `gorm:"not null;default:1;index" json:"post_category_id"`
	Category       *PostCategory  `gorm:"foreignKey:PostCategoryID" json:"category,omitempty"`
	Text           string         `gorm:"type:text;not null" json:"text"`
	Visibility     bool           `gorm:"not null;default:true" json:"visibility"`
	Comments       []Comment      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments"`
	Reactions      []PostReaction `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"reactions"`
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->" json:"comment_count"`
	// ReactionCount is not persisted; computed at query time
	ReactionCount int       `gorm:"->" json:"reaction_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OwnerID returns the post author's id.
func (p *Post) OwnerID() uint { return p.UserID }

// VisibleTo reports whether the actor may read the post.
func (p *Post) VisibleTo(actorID uint) bool {
	return p.Visibility || p.UserID == actorID
}
