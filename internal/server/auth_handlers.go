package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"postboard/internal/kv"
	"postboard/internal/middleware"
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "postboard-api"
	tokenAudience = "postboard-client"
)

// tokenClaims are the JWT claims issued at register and login. The author
// names ride along so requests need no user lookup to build an Actor.
type tokenClaims struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=100"`
	LastName  string `json:"lastName" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" trim:"-" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" trim:"-" validate:"required"`
}

// Register handles POST /api/user/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
		Password:  string(hashedPassword),
	}
	if err := s.userService.CreateUser(c.UserContext(), user); err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.issueToken(c.UserContext(), user)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"user":    user,
		"token":   token,
	})
}

// Login handles POST /api/user/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.userService.GetUserByEmail(c.UserContext(), req.Email)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, models.NewUnauthorizedError("Invalid email or password"))
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, models.NewUnauthorizedError("Invalid email or password"))
	}

	token, err := s.issueToken(c.UserContext(), user)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// Logout handles POST /api/user/logout. The presented token is revoked until
// it would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals(localsClaims).(*tokenClaims)
	if claims != nil && claims.ExpiresAt != nil {
		actor := actorFrom(c)
		if err := s.tokens.Revoke(c.UserContext(), actor.ID, claims.ID, claims.ExpiresAt.Time); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to revoke token", "error", err)
		}
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Me handles GET /api/user
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), actorFrom(c).ID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "User retrieved successfully", "user", user)
}

// Tokens handles GET /api/tokens
func (s *Server) Tokens(c *fiber.Ctx) error {
	tokens, err := s.tokens.List(c.UserContext(), actorFrom(c).ID)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	return respond(c, fiber.StatusOK, "Tokens retrieved successfully", "tokens", tokens)
}

// issueToken signs a token for user and records it in the token store.
func (s *Server) issueToken(ctx context.Context, user *models.User) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	expires := now.Add(s.config.JWTTTL)
	claims := tokenClaims{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", err
	}

	info := kv.TokenInfo{JTI: claims.ID, IssuedAt: now, ExpiresAt: expires}
	if err := s.tokens.Track(ctx, user.ID, info); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to track issued token", "error", err)
	}
	return signed, nil
}

// parseToken validates signature, issuer, audience and expiry.
func (s *Server) parseToken(tokenString string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

func bearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthRequired returns the authentication middleware. The token comes from
// the Authorization header, or from the token query parameter on websocket
// upgrades where browsers cannot set headers.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" && strings.HasPrefix(c.Path(), "/ws") {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.RespondWithError(c, models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			return models.RespondWithError(c, models.NewUnauthorizedError("Invalid or expired token"))
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || userID == 0 {
			return models.RespondWithError(c, models.NewUnauthorizedError("Invalid user ID in token"))
		}

		revoked, err := s.tokens.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "token revocation check failed", "error", err)
		}
		if revoked {
			return models.RespondWithError(c, models.NewUnauthorizedError("Token has been revoked"))
		}

		actor := models.Actor{ID: uint(userID), FirstName: claims.FirstName, LastName: claims.LastName}
		c.Locals(localsUserID, actor.ID)
		c.Locals(localsActor, actor)
		c.Locals(localsClaims, claims)
		c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, actor.ID))

		return c.Next()
	}
}
