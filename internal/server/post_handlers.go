package server

import (
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Message *string `json:"message"`
}

// ListUserPosts handles GET /users/:user_id/posts
// @Summary List a user's posts
// @Description Unknown users have no posts, so the result is an empty array
// @Tags posts
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /users/{user_id}/posts [get]
func (s *Server) ListUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "user_id")
	if err != nil {
		return nil
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	posts, err := s.postService.ListPostsForUser(ctx, userID)
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.JSON(posts)
}

// CreatePost handles POST /users/:user_id/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Param user_id path int true "User ID"
// @Param request body object{message=string} true "New post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "User does not exist"
// @Router /users/{user_id}/posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "user_id")
	if err != nil {
		return nil
	}

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Message == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("message is required"))
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	post, err := s.postService.CreatePost(ctx, userID, *req.Message)
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}
