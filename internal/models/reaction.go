package models

import (
	"fmt"
	"strings"
	"time"
)

// ReactType is the kind of a reaction.
type ReactType string

const (
	ReactLike  ReactType = "like"
	ReactLove  ReactType = "love"
	ReactAngry ReactType = "angry"
)

// ParseReactType validates a client supplied kind. An empty value selects
// ReactLike.
func ParseReactType(s string) (ReactType, error) {
	switch kind := ReactType(strings.ToLower(strings.TrimSpace(s))); kind {
	case "":
		return ReactLike, nil
	case ReactLike, ReactLove, ReactAngry:
		return kind, nil
	default:
		return "", fmt.Errorf("react type must be one of like, love, angry")
	}
}

// ToggleAction reports what a reaction toggle did.
type ToggleAction string

const (
	ActionCreated ToggleAction = "created"
	ActionDeleted ToggleAction = "deleted"
)

// ReactionToggle is the outcome of toggling a reaction of type R.
type ReactionToggle[R any] struct {
	Action   ToggleAction `json:"action"`
	Reaction *R           `json:"reaction"`
}

// ReactionRecord is implemented by pointers to the three reaction join
// records so generic code can build and decorate them.
type ReactionRecord[R any] interface {
	*R
	Bind(targetID, userID uint, kind ReactType)
	AttachUser(u *User)
}

// PostReaction is a user's reaction to a post.
type PostReaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_reacts_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_reacts_post_user;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ReactType ReactType `gorm:"type:varchar(10);not null;default:like" json:"react_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PostReaction) TableName() string { return "post_reacts" }

func (r *PostReaction) Bind(targetID, userID uint, kind ReactType) {
	r.PostID, r.UserID, r.ReactType = targetID, userID, kind
}

func (r *PostReaction) AttachUser(u *User) { r.User = u }

// CommentReaction is a user's reaction to a comment.
type CommentReaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_reacts_comment_user" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_reacts_comment_user;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ReactType ReactType `gorm:"type:varchar(10);not null;default:like" json:"react_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CommentReaction) TableName() string { return "comment_reacts" }

func (r *CommentReaction) Bind(targetID, userID uint, kind ReactType) {
	r.CommentID, r.UserID, r.ReactType = targetID, userID, kind
}

func (r *CommentReaction) AttachUser(u *User) { r.User = u }

// ReplyReaction is a user's reaction to a reply.
type ReplyReaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReplyID   uint      `gorm:"not null;uniqueIndex:idx_reply_reacts_reply_user" json:"reply_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reply_reacts_reply_user;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ReactType ReactType `gorm:"type:varchar(10);not null;default:like" json:"react_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ReplyReaction) TableName() string { return "reply_reacts" }

func (r *ReplyReaction) Bind(targetID, userID uint, kind ReactType) {
	r.ReplyID, r.UserID, r.ReactType = targetID, userID, kind
}

func (r *ReplyReaction) AttachUser(u *User) { r.User = u }
