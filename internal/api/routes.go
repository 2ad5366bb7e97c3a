package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/postureperfect/avatar-server/domain/entities"
	"github.com/postureperfect/avatar-server/domain/repositories"
	"github.com/postureperfect/avatar-server/internal/auth"
)

// ChatPipeline is the slice of the chat service the HTTP layer needs. Tests
// substitute a fake.
type ChatPipeline interface {
	Chat(ctx context.Context, userMessage string) (*entities.ChatResponse, error)
	ChatStream(ctx context.Context, userMessage string, emit func(entities.MessageSegment) error) error
}

// InitRoutes initializes all API routes
func InitRoutes(
	e *echo.Echo,
	pipeline ChatPipeline,
	users repositories.UserRepository,
	contacts repositories.ContactRepository,
	logger *zap.Logger,
) {
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello World!")
	})

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "avatar-server",
		})
	})

	e.POST("/chat", func(c echo.Context) error {
		return chat(c, pipeline, logger)
	})

	e.GET("/ws/chat", func(c echo.Context) error {
		return chatWebSocket(c, pipeline, logger)
	})

	e.POST("/api/contact", func(c echo.Context) error {
		return submitContact(c, contacts, logger)
	})

	e.POST("/api/users", func(c echo.Context) error {
		return registerUser(c, users, logger)
	})

	e.POST("/api/login", func(c echo.Context) error {
		return loginUser(c, users, logger)
	})
}

// chat resolves a user message into the full ordered segment list. Pipeline
// failures are deliberately opaque to the caller.
func chat(c echo.Context, pipeline ChatPipeline, logger *zap.Logger) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind chat request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
		})
	}

	response, err := pipeline.Chat(c.Request().Context(), req.Message)
	if err != nil {
		logger.Error("Chat pipeline failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal Server Error",
		})
	}

	return c.JSON(http.StatusOK, ChatResponse{Messages: response.Messages})
}

func submitContact(c echo.Context, contacts repositories.ContactRepository, logger *zap.Logger) error {
	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
		})
	}

	contact := &entities.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}

	if err := contacts.Create(c.Request().Context(), contact); err != nil {
		logger.Error("Failed to save contact form", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal Server Error",
		})
	}

	return c.JSON(http.StatusCreated, MessageResponse{
		Message: "Contact form submitted successfully",
	})
}

func registerUser(c echo.Context, users repositories.UserRepository, logger *zap.Logger) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
		})
	}

	if req.Email == "" || req.Password == "" || req.Account == "" {
		return c.JSON(http.StatusBadRequest, MessageResponse{
			Message: "All fields are required",
		})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal Server Error",
		})
	}

	user := &entities.User{
		Email:    req.Email,
		Password: hash,
		Account:  req.Account,
	}

	if err := users.Create(c.Request().Context(), user); err != nil {
		if errors.Is(err, entities.ErrEmailTaken) {
			return c.JSON(http.StatusBadRequest, MessageResponse{
				Message: "Email already exists",
			})
		}
		logger.Error("Failed to save user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal Server Error",
		})
	}

	return c.JSON(http.StatusCreated, MessageResponse{
		Message: "User created successfully",
	})
}

func loginUser(c echo.Context, users repositories.UserRepository, logger *zap.Logger) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
		})
	}

	user, err := users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		logger.Error("Failed to look up user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal Server Error",
		})
	}

	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "Invalid credentials",
		})
	}

	token, err := auth.GenerateUserToken(user.ID, user.Email)
	if err != nil {
		logger.Error("Failed to generate token",
			zap.String("user_id", user.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal Server Error",
		})
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   token,
	})
}
