package models

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_StatusTable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
	}{
		{"validation", NewValidationError("bad"), 400, "VALIDATION_ERROR"},
		{"not found", NewNotFoundError("Post", 7), 404, "NOT_FOUND"},
		{"forbidden", NewForbiddenError("nope"), 403, "FORBIDDEN"},
		{"unauthenticated", NewUnauthorizedError("who"), 401, "UNAUTHORIZED"},
		{"conflict", NewConflictError("dup"), 400, "CONFLICT"},
		{"internal", NewInternalError(errors.New("db down")), 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status())
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestAsAppError(t *testing.T) {
	t.Parallel()

	wrapped := errors.Join(errors.New("context"), NewNotFoundError("Comment", 3))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.Equal(t, "Comment with ID 3 not found", AsAppError(wrapped).Message)

	plain := AsAppError(errors.New("boom"))
	assert.Equal(t, KindUnexpected, plain.Kind)
	assert.Equal(t, "Internal server error", plain.Message)
}

func TestRespondWithError_HidesInternalCause(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithError(c, NewInternalError(errors.New("password=hunter2")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "hunter2")
	assert.Contains(t, string(body), "Internal server error")
}

func TestParseReactType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    ReactType
		wantErr bool
	}{
		{"", ReactLike, false},
		{"like", ReactLike, false},
		{" LOVE ", ReactLove, false},
		{"angry", ReactAngry, false},
		{"wow", "", true},
	}

	for _, tt := range tests {
		got, err := ParseReactType(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	p, err := NewPage(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Offset())

	p, err = NewPage(1, 500)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, p.Limit)

	_, err = NewPage(1, 0)
	assert.True(t, IsKind(err, KindValidation))
	assert.Contains(t, AsAppError(err).Fields, "limit")

	_, err = NewPage(0, 5)
	assert.Contains(t, AsAppError(err).Fields, "page")
}

func TestNewPageMeta(t *testing.T) {
	t.Parallel()

	p, _ := NewPage(3, 2)
	meta := NewPageMeta(p, 2)
	assert.Equal(t, PageMeta{Total: 2, PerPage: 2, CurrentPage: 3, LastPage: 1}, meta)

	p, _ = NewPage(1, 5)
	assert.Equal(t, 3, NewPageMeta(p, 11).LastPage)
}

func TestPostVisibleTo(t *testing.T) {
	t.Parallel()

	hidden := &Post{UserID: 1, Visibility: false}
	assert.True(t, hidden.VisibleTo(1))
	assert.False(t, hidden.VisibleTo(2))

	public := &Post{UserID: 1, Visibility: true}
	assert.True(t, public.VisibleTo(2))
}
