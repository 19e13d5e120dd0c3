package models

import "time"

// Comment represents a comment on a post.
type Comment struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	PostID    uint              `gorm:"not null;index" json:"post_id"`
	Post      *Post             `gorm:"foreignKey:PostID" json:"post,omitempty"`
	UserID    uint              `gorm:"not null;index" json:"user_id"`
	User      *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Text      string            `gorm:"type:text;not null" json:"text"`
	Replies   []Reply           `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"replies"`
	Reactions []CommentReaction `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"reactions"`
	// ReactionCount is not persisted; computed at query time
	ReactionCount int       `gorm:"->" json:"reaction_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OwnerID returns the comment author's id.
func (c *Comment) OwnerID() uint { return c.UserID }
