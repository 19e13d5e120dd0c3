package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postboard/internal/config"
	"postboard/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
		Port:      "0",
		Env:       "test",
	}
}

// newTestServer builds a Server on a fresh SQLite database. With withRedis,
// it is also backed by miniredis.
func newTestServer(t *testing.T, withRedis bool) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	var rdb *redis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	s, err := NewServerWithDeps(testConfig(), testutil.NewTestDB(t), rdb)
	require.NoError(t, err)
	return s, s.App()
}

type apiResponse struct {
	status int
	body   map[string]interface{}
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) apiResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	out := apiResponse{status: resp.StatusCode, body: map[string]interface{}{}}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

// register creates an account and returns its id and token.
func register(t *testing.T, app *fiber.App, first, last string) (uint, string) {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/user/register", "", fiber.Map{
		"firstName": first,
		"lastName":  last,
		"email":     fmt.Sprintf("%s.%s@Example.com", first, last),
		"password":  "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.status, resp.body)
	user := resp.body["user"].(map[string]interface{})
	return uint(user["id"].(float64)), resp.body["token"].(string)
}

func idOf(t *testing.T, v interface{}) uint {
	t.Helper()
	m, ok := v.(map[string]interface{})
	require.True(t, ok, "expected object, got %T", v)
	return uint(m["id"].(float64))
}

func TestHealth(t *testing.T) {
	_, app := newTestServer(t, false)

	resp := call(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "up", resp.body["status"])

	resp = call(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.status)
	checks := resp.body["checks"].(map[string]interface{})
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "disabled", checks["redis"])
}

func TestAuthFlow(t *testing.T) {
	_, app := newTestServer(t, true)

	id, token := register(t, app, "Ada", "Lovelace")

	t.Run("Duplicate email", func(t *testing.T) {
		resp := call(t, app, http.MethodPost, "/api/user/register", "", fiber.Map{
			"firstName": "Ada", "lastName": "Again",
			"email": "ada.lovelace@example.com", "password": "another one",
		})
		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "CONFLICT", resp.body["code"])
	})

	t.Run("Field validation", func(t *testing.T) {
		resp := call(t, app, http.MethodPost, "/api/user/register", "", fiber.Map{
			"firstName": " A ", "lastName": "Byron", "email": "nope", "password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, resp.status)
		errs := resp.body["errors"].(map[string]interface{})
		assert.Contains(t, errs, "firstName")
		assert.Contains(t, errs, "email")
		assert.Contains(t, errs, "password")
	})

	t.Run("Login", func(t *testing.T) {
		resp := call(t, app, http.MethodPost, "/api/user/login", "", fiber.Map{
			"email": "ADA.lovelace@example.com", "password": "correct horse",
		})
		require.Equal(t, http.StatusOK, resp.status, resp.body)
		assert.Equal(t, "Login successful", resp.body["message"])
		assert.NotEmpty(t, resp.body["token"])

		resp = call(t, app, http.MethodPost, "/api/user/login", "", fiber.Map{
			"email": "ada.lovelace@example.com", "password": "wrong horse",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.status)
	})

	t.Run("Me", func(t *testing.T) {
		resp := call(t, app, http.MethodGet, "/api/user", token, nil)
		require.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, id, idOf(t, resp.body["user"]))
	})

	t.Run("Tokens lists issued tokens", func(t *testing.T) {
		resp := call(t, app, http.MethodGet, "/api/tokens", token, nil)
		require.Equal(t, http.StatusOK, resp.status)
		assert.Len(t, resp.body["tokens"], 2)
	})

	t.Run("Logout revokes the token", func(t *testing.T) {
		resp := call(t, app, http.MethodPost, "/api/user/logout", token, nil)
		require.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, "Logged out successfully", resp.body["message"])

		resp = call(t, app, http.MethodGet, "/api/user", token, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.status)
	})
}

func TestAuthRequired(t *testing.T) {
	_, app := newTestServer(t, false)

	resp := call(t, app, http.MethodGet, "/api/get-post", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = call(t, app, http.MethodGet, "/api/get-post", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Invalid or expired token", resp.body["message"])
}

func TestPostEndpoints(t *testing.T) {
	_, app := newTestServer(t, false)
	_, alice := register(t, app, "Alice", "Archer")
	_, bob := register(t, app, "Bob", "Baker")

	resp := call(t, app, http.MethodPost, "/api/create-post", alice, fiber.Map{"text": "short"})
	require.Equal(t, http.StatusBadRequest, resp.status)
	assert.Contains(t, resp.body["errors"], "text")

	resp = call(t, app, http.MethodPost, "/api/create-post", alice, fiber.Map{"text": "  hello world  ", "category": "Diary"})
	require.Equal(t, http.StatusCreated, resp.status, resp.body)
	assert.Equal(t, "Create post successfully", resp.body["message"])
	post := resp.body["post"].(map[string]interface{})
	assert.Equal(t, "hello world", post["text"])
	postID := idOf(t, post)

	t.Run("Get one and list", func(t *testing.T) {
		resp := call(t, app, http.MethodGet, fmt.Sprintf("/api/get-post?postId=%d", postID), bob, nil)
		require.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, postID, idOf(t, resp.body["post"]))

		resp = call(t, app, http.MethodGet, "/api/get-post?page=1&limit=5", bob, nil)
		require.Equal(t, http.StatusOK, resp.status)
		assert.Len(t, resp.body["posts"], 1)
		meta := resp.body["meta"].(map[string]interface{})
		assert.EqualValues(t, 1, meta["total"])

		resp = call(t, app, http.MethodGet, "/api/get-post?limit=0", bob, nil)
		assert.Equal(t, http.StatusBadRequest, resp.status)
	})

	t.Run("Category", func(t *testing.T) {
		resp := call(t, app, http.MethodGet, "/api/get-post-category?category=Diary", bob, nil)
		require.Equal(t, http.StatusOK, resp.status)
		assert.Len(t, resp.body["posts"], 1)

		resp = call(t, app, http.MethodGet, "/api/get-post-category", bob, nil)
		require.Equal(t, http.StatusOK, resp.status)
		assert.Empty(t, resp.body["posts"])
	})

	t.Run("Only the owner updates", func(t *testing.T) {
		resp := call(t, app, http.MethodPost, "/api/update-post", bob, fiber.Map{"postId": postID, "text": "hijacked text"})
		assert.Equal(t, http.StatusForbidden, resp.status)

		resp = call(t, app, http.MethodPost, "/api/update-post", alice, fiber.Map{"postId": postID, "text": "edited text"})
		require.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, "edited text", resp.body["post"].(map[string]interface{})["text"])

		resp = call(t, app, http.MethodPost, "/api/update-post", alice, fiber.Map{"postId": 9999, "text": "edited text"})
		assert.Equal(t, http.StatusNotFound, resp.status)
	})

	t.Run("React toggles", func(t *testing.T) {
		resp := call(t, app, http.MethodPost, "/api/post-react", bob, fiber.Map{"postId": postID, "reactType": "love"})
		require.Equal(t, http.StatusOK, resp.status, resp.body)
		assert.Equal(t, "React successfully", resp.body["message"])
		assert.Equal(t, "created", resp.body["action"])

		resp = call(t, app, http.MethodPost, "/api/post-react", bob, fiber.Map{"postId": postID})
		require.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, "Undo react successfully", resp.body["message"])
		assert.Equal(t, "deleted", resp.body["action"])

		resp = call(t, app, http.MethodPost, "/api/post-react", bob, fiber.Map{"postId": postID, "reactType": "wow"})
		assert.Equal(t, http.StatusBadRequest, resp.status)
	})

	t.Run("Hidden posts disappear for others", func(t *testing.T) {
		resp := call(t, app, http.MethodPost, "/api/post-visibility", alice, fiber.Map{"postId": postID})
		require.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, false, resp.body["post"].(map[string]interface{})["visibility"])

		resp = call(t, app, http.MethodGet, fmt.Sprintf("/api/get-post?postId=%d", postID), bob, nil)
		assert.Equal(t, http.StatusNotFound, resp.status)

		resp = call(t, app, http.MethodGet, fmt.Sprintf("/api/get-post?postId=%d", postID), alice, nil)
		assert.Equal(t, http.StatusOK, resp.status)
	})

	t.Run("Delete", func(t *testing.T) {
		resp := call(t, app, http.MethodDelete, "/api/delete-post", alice, fiber.Map{"postId": postID})
		require.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, postID, idOf(t, resp.body["deletedPost"]))

		resp = call(t, app, http.MethodPost, "/api/delete-post", alice, fiber.Map{"postId": postID})
		assert.Equal(t, http.StatusNotFound, resp.status)
	})
}

func TestCommentAndReplyEndpoints(t *testing.T) {
	_, app := newTestServer(t, false)
	_, alice := register(t, app, "Alice", "Archer")
	_, bob := register(t, app, "Bob", "Baker")

	resp := call(t, app, http.MethodPost, "/api/create-post", alice, fiber.Map{"text": "a post to discuss"})
	require.Equal(t, http.StatusCreated, resp.status)
	postID := idOf(t, resp.body["post"])

	resp = call(t, app, http.MethodPost, "/api/create-comment", bob, fiber.Map{"postId": postID, "text": "first!"})
	require.Equal(t, http.StatusCreated, resp.status, resp.body)
	assert.Equal(t, "Comment successfully", resp.body["message"])
	commentID := idOf(t, resp.body["newComment"])

	resp = call(t, app, http.MethodPost, "/api/create-comment", bob, fiber.Map{"postId": postID, "text": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = call(t, app, http.MethodGet, fmt.Sprintf("/api/get-comment?postId=%d", postID), alice, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Len(t, resp.body["comments"], 1)
	assert.EqualValues(t, 2, resp.body["meta"].(map[string]interface{})["per_page"])

	resp = call(t, app, http.MethodPost, "/api/comment-react", alice, fiber.Map{"commentId": commentID})
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Reacted successfully", resp.body["message"])

	resp = call(t, app, http.MethodPost, "/api/create-reply", alice, fiber.Map{"commentId": commentID, "text": "thanks"})
	require.Equal(t, http.StatusCreated, resp.status, resp.body)
	assert.Equal(t, "Reply created successfully", resp.body["message"])
	replyID := idOf(t, resp.body["newReply"])

	resp = call(t, app, http.MethodPost, "/api/update-reply", bob, fiber.Map{"replyId": replyID, "text": "not mine"})
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = call(t, app, http.MethodPost, "/api/update-reply", alice, fiber.Map{"replyId": replyID, "text": "thanks a lot"})
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "thanks a lot", resp.body["reply"].(map[string]interface{})["text"])

	resp = call(t, app, http.MethodGet, fmt.Sprintf("/api/get-replies?commentId=%d", commentID), bob, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Len(t, resp.body["replies"], 1)

	resp = call(t, app, http.MethodPost, "/api/reply-react", bob, fiber.Map{"replyId": replyID, "reactType": "angry"})
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "created", resp.body["action"])

	// The comment author may remove a reply on their comment.
	resp = call(t, app, http.MethodDelete, "/api/delete-reply", bob, fiber.Map{"replyId": replyID})
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, replyID, idOf(t, resp.body["deletedReply"]))

	resp = call(t, app, http.MethodPost, "/api/update-comment", alice, fiber.Map{"commentId": commentID, "text": "moderated"})
	assert.Equal(t, http.StatusForbidden, resp.status)

	// The post author may remove any comment on their post.
	resp = call(t, app, http.MethodDelete, "/api/delete-comment", alice, fiber.Map{"commentId": commentID})
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Delete comment successfully", resp.body["message"])
	assert.Equal(t, commentID, idOf(t, resp.body["deletedComment"]))

	resp = call(t, app, http.MethodGet, fmt.Sprintf("/api/get-replies?commentId=%d", commentID), bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestHiddenPostThreadEndpoints(t *testing.T) {
	_, app := newTestServer(t, false)
	_, alice := register(t, app, "Alice", "Archer")
	_, bob := register(t, app, "Bob", "Baker")

	resp := call(t, app, http.MethodPost, "/api/create-post", alice, fiber.Map{"text": "only for me"})
	require.Equal(t, http.StatusCreated, resp.status)
	postID := idOf(t, resp.body["post"])

	resp = call(t, app, http.MethodPost, "/api/create-comment", alice, fiber.Map{"postId": postID, "text": "note"})
	require.Equal(t, http.StatusCreated, resp.status)
	commentID := idOf(t, resp.body["newComment"])

	resp = call(t, app, http.MethodPost, "/api/post-visibility", alice, fiber.Map{"postId": postID})
	require.Equal(t, http.StatusOK, resp.status)

	resp = call(t, app, http.MethodGet, fmt.Sprintf("/api/get-replies?commentId=%d", commentID), bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
	resp = call(t, app, http.MethodPost, "/api/create-reply", bob, fiber.Map{"commentId": commentID, "text": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.status)
	resp = call(t, app, http.MethodPost, "/api/comment-react", bob, fiber.Map{"commentId": commentID})
	assert.Equal(t, http.StatusNotFound, resp.status)

	resp = call(t, app, http.MethodGet, fmt.Sprintf("/api/get-replies?commentId=%d", commentID), alice, nil)
	assert.Equal(t, http.StatusOK, resp.status)
}

func TestUsersByPostCount(t *testing.T) {
	_, app := newTestServer(t, false)
	_, alice := register(t, app, "Alice", "Archer")
	bobID, bob := register(t, app, "Bob", "Baker")

	for i := 0; i < 2; i++ {
		resp := call(t, app, http.MethodPost, "/api/create-post", bob, fiber.Map{"text": fmt.Sprintf("bob post %d", i)})
		require.Equal(t, http.StatusCreated, resp.status)
	}
	resp := call(t, app, http.MethodPost, "/api/create-post", alice, fiber.Map{"text": "alice post"})
	require.Equal(t, http.StatusCreated, resp.status)

	resp = call(t, app, http.MethodGet, "/api/users-by-post-count", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Users retrieved successfully", resp.body["message"])

	users := resp.body["users"].([]interface{})
	require.Len(t, users, 2)
	first := users[0].(map[string]interface{})
	assert.Equal(t, bobID, idOf(t, first))
	assert.EqualValues(t, 2, first["posts_count"])
	assert.NotContains(t, first, "email")
	assert.EqualValues(t, 10, resp.body["meta"].(map[string]interface{})["per_page"])
}

func TestUnknownRoute(t *testing.T) {
	_, app := newTestServer(t, false)

	resp := call(t, app, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.NotEmpty(t, resp.body["message"])
}
