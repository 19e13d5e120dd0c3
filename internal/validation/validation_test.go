package validation

import (
	"testing"

	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postInput struct {
	Text      string `json:"text" validate:"required,min=6"`
	Category  string `json:"category" validate:"omitempty,min=3"`
	ReactType string `json:"reactType" validate:"reacttype"`
	PostID    uint   `json:"postId" validate:"gt=0"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	t.Run("valid input is trimmed", func(t *testing.T) {
		in := postInput{Text: "  hello world  ", ReactType: "love", PostID: 1}
		require.NoError(t, Struct(&in))
		assert.Equal(t, "hello world", in.Text)
	})

	t.Run("whitespace only text fails min length", func(t *testing.T) {
		err := Struct(&postInput{Text: "   abc   ", PostID: 1})
		require.Error(t, err)
		appErr := models.AsAppError(err)
		assert.Equal(t, models.KindValidation, appErr.Kind)
		assert.Equal(t, "text must be at least 6 characters", appErr.Fields["text"])
	})

	t.Run("field names follow json tags", func(t *testing.T) {
		err := Struct(&postInput{Text: "long enough", Category: "ab", ReactType: "wow"})
		fields := models.AsAppError(err).Fields
		assert.Contains(t, fields, "category")
		assert.Contains(t, fields, "reactType")
		assert.Equal(t, "postId must be a positive integer", fields["postId"])
	})

	t.Run("empty react type defaults", func(t *testing.T) {
		assert.NoError(t, Struct(&postInput{Text: "long enough", PostID: 2}))
	})
}

func TestStruct_Email(t *testing.T) {
	t.Parallel()

	type register struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	err := Struct(&register{Email: "not-an-email", Password: "short"})
	fields := models.AsAppError(err).Fields
	assert.Equal(t, "email must be a valid email address", fields["email"])
	assert.Equal(t, "password must be at least 8 characters", fields["password"])

	assert.NoError(t, Struct(&register{Email: "ada@example.com", Password: "correct horse"}))
}
