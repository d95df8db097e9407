package server

import (
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createUserRequest struct {
	Username *string `json:"username"`
}

// Greeting handles GET /
// @Summary Greeting
// @Tags meta
// @Produce plain
// @Success 200 {string} string "Hello, World!"
// @Router / [get]
func (s *Server) Greeting(c *fiber.Ctx) error {
	return c.SendString("Hello, World!")
}

// ListUsers handles GET /users
// @Summary List users
// @Description Returns every user ordered by id
// @Tags users
// @Produce json
// @Success 200 {array} models.User
// @Failure 503 {object} models.ErrorResponse
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	users, err := s.userService.ListUsers(ctx)
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.JSON(users)
}

// CreateUser handles POST /users
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string} true "New user"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("username is required"))
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	user, err := s.userService.CreateUser(ctx, *req.Username)
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}
