package database_test

import (
	"context"
	"testing"

	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/models"
	"postboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5433",
		DBUser:     "app",
		DBPassword: "secret",
		DBName:     "postboard",
	}
	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=postboard sslmode=disable", database.PostgresDSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, database.PostgresDSN(cfg), "sslmode=require")
}

func TestMigrate_SeedsDefaultCategory(t *testing.T) {
	db := testutil.NewTestDB(t)

	var category models.PostCategory
	require.NoError(t, db.First(&category, models.DefaultCategoryID).Error)
	assert.Equal(t, "General", category.Type)
}

func TestMigrationStatusAndDown(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	states, err := database.MigrationStatus(ctx, db)
	require.NoError(t, err)
	require.Len(t, states, 3)
	for _, s := range states {
		assert.True(t, s.Applied, s.Source)
	}

	version, err := database.MigrateDown(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)
	assert.False(t, db.Migrator().HasTable("post_reacts"))

	applied, err := database.Migrate(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, applied)
	assert.True(t, db.Migrator().HasTable("post_reacts"))
}

func TestCascade_DeletingPostRemovesDescendants(t *testing.T) {
	db := testutil.NewTestDB(t)

	alice := testutil.CreateUser(t, db, "Alice", "Author")
	bob := testutil.CreateUser(t, db, "Bob", "Builder")
	post := testutil.CreatePost(t, db, alice, "A post with children", true)
	comment := testutil.CreateComment(t, db, bob, post, "first")
	reply := testutil.CreateReply(t, db, alice, comment, "thanks")

	require.NoError(t, db.Create(&models.PostReaction{PostID: post.ID, UserID: bob.ID, ReactType: models.ReactLike}).Error)
	require.NoError(t, db.Create(&models.CommentReaction{CommentID: comment.ID, UserID: alice.ID, ReactType: models.ReactLove}).Error)
	require.NoError(t, db.Create(&models.ReplyReaction{ReplyID: reply.ID, UserID: bob.ID, ReactType: models.ReactAngry}).Error)

	require.NoError(t, db.Delete(&models.Post{}, post.ID).Error)

	for _, model := range []interface{}{
		&models.Comment{}, &models.Reply{},
		&models.PostReaction{}, &models.CommentReaction{}, &models.ReplyReaction{},
	} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T rows should cascade", model)
	}
}

func TestReactionUniqueIndex(t *testing.T) {
	db := testutil.NewTestDB(t)

	alice := testutil.CreateUser(t, db, "Alice", "Author")
	post := testutil.CreatePost(t, db, alice, "Unique reactions", true)

	require.NoError(t, db.Create(&models.PostReaction{PostID: post.ID, UserID: alice.ID, ReactType: models.ReactLike}).Error)
	err := db.Create(&models.PostReaction{PostID: post.ID, UserID: alice.ID, ReactType: models.ReactLove}).Error
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	db := testutil.NewTestDB(t)
	assert.NoError(t, database.Ping(context.Background(), db))
}
