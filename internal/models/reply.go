package models

import "time"

// Reply represents a reply to a comment.
type Reply struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CommentID uint            `gorm:"not null;index" json:"comment_id"`
	Comment   *Comment        `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	User      *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Text      string          `gorm:"type:text;not null" json:"text"`
	Reactions []ReplyReaction `gorm:"foreignKey:ReplyID;constraint:OnDelete:CASCADE" json:"reactions"`
	// ReactionCount is not persisted; computed at query time
	ReactionCount int       `gorm:"->" json:"reaction_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OwnerID returns the reply author's id.
func (r *Reply) OwnerID() uint { return r.UserID }
