// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"postboard/internal/database"
	"postboard/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory SQLite database with foreign keys
// enforced and every migration applied.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = database.Migrate(context.Background(), db)
	require.NoError(t, err)
	return db
}

// CreateUser inserts a user with a unique email.
func CreateUser(t *testing.T, db *gorm.DB, firstName, lastName string) *models.User {
	t.Helper()
	u := &models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     fmt.Sprintf("%s.%s@example.com", strings.ToLower(firstName), strings.ToLower(lastName)),
		Password:  "not-a-real-hash",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post authored by user.
func CreatePost(t *testing.T, db *gorm.DB, user *models.User, text string, visible bool) *models.Post {
	t.Helper()
	p := &models.Post{UserID: user.ID, PostCategoryID: models.DefaultCategoryID, Text: text, Visibility: true}
	require.NoError(t, db.Create(p).Error)
	if !visible {
		require.NoError(t, db.Model(p).Update("visibility", false).Error)
	}
	return p
}

// CreateComment inserts a comment on post.
func CreateComment(t *testing.T, db *gorm.DB, user *models.User, post *models.Post, text string) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: post.ID, UserID: user.ID, Text: text}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateReply inserts a reply on comment.
func CreateReply(t *testing.T, db *gorm.DB, user *models.User, comment *models.Comment, text string) *models.Reply {
	t.Helper()
	r := &models.Reply{CommentID: comment.ID, UserID: user.ID, Text: text}
	require.NoError(t, db.Create(r).Error)
	return r
}

// Actor returns the Actor for u.
func Actor(u *models.User) models.Actor {
	return models.ActorFromUser(u)
}
