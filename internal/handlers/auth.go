package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/esusuconfam/esusu-api/internal/services"
	"github.com/esusuconfam/esusu-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type AuthHandler struct {
	userService UserServiceInterface
	jwtService  JWTServiceInterface
	tokenExpiry time.Duration
}

func NewAuthHandler(userService UserServiceInterface, jwtService JWTServiceInterface, tokenExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		tokenExpiry: tokenExpiry,
	}
}

func (h *AuthHandler) Register(c *drift.Context) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		c.BadRequest("a valid email is required")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}
	if len(req.Password) < 8 {
		c.BadRequest("password must be at least 8 characters")
		return
	}

	user, err := h.userService.Register(context.Background(), services.RegisterInput{
		Email:       req.Email,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		c.InternalServerError("failed to generate token")
		return
	}

	_ = c.JSON(201, dto.AuthResponse{
		User:        toUserResponse(user),
		AccessToken: token,
		ExpiresIn:   int64(h.tokenExpiry.Seconds()),
	})
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	user, err := h.userService.Authenticate(context.Background(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		c.Unauthorized("invalid email or password")
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		c.InternalServerError("failed to generate token")
		return
	}

	_ = c.JSON(200, dto.AuthResponse{
		User:        toUserResponse(user),
		AccessToken: token,
		ExpiresIn:   int64(h.tokenExpiry.Seconds()),
	})
}
