// Package seed populates a database with fake users and content for local
// development and demos.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

//go:embed categories.yaml
var categoriesYAML []byte

type categoryFile struct {
	Categories []string `yaml:"categories"`
}

// Categories returns the category names shipped with the seeder.
func Categories() ([]string, error) {
	var f categoryFile
	if err := yaml.Unmarshal(categoriesYAML, &f); err != nil {
		return nil, fmt.Errorf("parse categories.yaml: %w", err)
	}
	return f.Categories, nil
}

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// Seed fixes the fake data generator; 0 picks a random seed.
	Seed int64
	// SkipBcrypt stores the plain password marker instead of a hash.
	// Accounts created this way cannot log in.
	SkipBcrypt bool
}

// Result counts what a seeding run created.
type Result struct {
	Users     int
	Posts     int
	Comments  int
	Replies   int
	Reactions int
}

// Seeder creates fake data through gorm and the post repository.
type Seeder struct {
	db    *gorm.DB
	posts repository.PostRepository
	fake  *gofakeit.Faker
	opts  Options
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:    db,
		posts: repository.NewPostRepository(db),
		fake:  gofakeit.New(opts.Seed),
		opts:  opts,
	}
}

// Run seeds users, posts and their discussions.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	if s.opts.ShouldClean {
		if err := s.Clear(ctx); err != nil {
			return nil, err
		}
	}

	categories, err := s.ensureCategories(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	users, err := s.createUsers(ctx, s.opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	res.Users = len(users)
	if len(users) == 0 {
		return res, nil
	}

	for i := 0; i < s.opts.NumPosts; i++ {
		if err := s.createDiscussion(ctx, users, categories, res); err != nil {
			return nil, err
		}
	}

	middleware.Logger.Info("seed complete",
		"users", res.Users, "posts", res.Posts, "comments", res.Comments,
		"replies", res.Replies, "reactions", res.Reactions)
	return res, nil
}

// Clear removes all users and, through cascades, everything they wrote.
// Categories are kept.
func (s *Seeder) Clear(ctx context.Context) error {
	tables := []string{"reply_reacts", "comment_reacts", "post_reacts", "replies", "comments", "posts", "users"}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Seeder) ensureCategories(ctx context.Context) ([]*models.PostCategory, error) {
	names, err := Categories()
	if err != nil {
		return nil, err
	}
	out := make([]*models.PostCategory, 0, len(names))
	for _, name := range names {
		cat, err := s.posts.FindOrCreateCategory(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		out = append(out, cat)
	}
	return out, nil
}

func (s *Seeder) createUsers(ctx context.Context, n int) ([]*models.User, error) {
	password := DefaultPassword
	if !s.opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		password = string(hashed)
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		first, last := s.fake.FirstName(), s.fake.LastName()
		users = append(users, &models.User{
			FirstName: first,
			LastName:  last,
			// The index keeps addresses unique across a run.
			Email:    strings.ToLower(fmt.Sprintf("%s.%s.%d@example.com", first, last, i)),
			Password: password,
		})
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(users, 100).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// createDiscussion adds one post with a few comments, replies and reactions
// from random users.
func (s *Seeder) createDiscussion(ctx context.Context, users []*models.User, categories []*models.PostCategory, res *Result) error {
	db := s.db.WithContext(ctx)

	categoryID := models.DefaultCategoryID
	if len(categories) > 0 && s.fake.Number(0, 3) > 0 {
		categoryID = categories[s.fake.Number(0, len(categories)-1)].ID
	}
	post := &models.Post{
		UserID:         s.pick(users).ID,
		PostCategoryID: categoryID,
		Text:           s.fake.Paragraph(1, 3, 12, " "),
		Visibility:     true,
	}
	if err := db.Omit("User", "Category").Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	// One post in ten is private.
	if s.fake.Number(1, 10) == 1 {
		if err := db.Model(post).Update("visibility", false).Error; err != nil {
			return err
		}
	}
	res.Posts++

	reactors := s.distinct(users, s.fake.Number(0, 4))
	for _, u := range reactors {
		r := &models.PostReaction{}
		r.Bind(post.ID, u.ID, s.reactType())
		if err := db.Omit("User").Create(r).Error; err != nil {
			return fmt.Errorf("create post reaction: %w", err)
		}
		res.Reactions++
	}

	for c := s.fake.Number(0, 3); c > 0; c-- {
		comment := &models.Comment{PostID: post.ID, UserID: s.pick(users).ID, Text: s.fake.Sentence(8)}
		if err := db.Omit("Post", "User").Create(comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		res.Comments++

		for _, u := range s.distinct(users, s.fake.Number(0, 2)) {
			r := &models.CommentReaction{}
			r.Bind(comment.ID, u.ID, s.reactType())
			if err := db.Omit("User").Create(r).Error; err != nil {
				return fmt.Errorf("create comment reaction: %w", err)
			}
			res.Reactions++
		}

		for rp := s.fake.Number(0, 2); rp > 0; rp-- {
			reply := &models.Reply{CommentID: comment.ID, UserID: s.pick(users).ID, Text: s.fake.Sentence(6)}
			if err := db.Omit("Comment", "User").Create(reply).Error; err != nil {
				return fmt.Errorf("create reply: %w", err)
			}
			res.Replies++

			if s.fake.Bool() {
				r := &models.ReplyReaction{}
				r.Bind(reply.ID, s.pick(users).ID, s.reactType())
				if err := db.Omit("User").Create(r).Error; err != nil {
					return fmt.Errorf("create reply reaction: %w", err)
				}
				res.Reactions++
			}
		}
	}
	return nil
}

func (s *Seeder) pick(users []*models.User) *models.User {
	return users[s.fake.Number(0, len(users)-1)]
}

// distinct returns up to n different users; reactions are unique per user.
func (s *Seeder) distinct(users []*models.User, n int) []*models.User {
	if n > len(users) {
		n = len(users)
	}
	shuffled := make([]*models.User, len(users))
	copy(shuffled, users)
	s.fake.ShuffleAnySlice(shuffled)
	return shuffled[:n]
}

func (s *Seeder) reactType() models.ReactType {
	kinds := []models.ReactType{models.ReactLike, models.ReactLike, models.ReactLove, models.ReactAngry}
	return kinds[s.fake.Number(0, len(kinds)-1)]
}
