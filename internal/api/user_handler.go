package api

import (
	"alcyxob/gym-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

type GetUserQuery struct {
	UserID string `form:"userId" binding:"omitempty,objectid"`
}

// UpdateUserRequest is a partial update; absent fields keep their value.
type UpdateUserRequest struct {
	UserID    string  `json:"userId" binding:"omitempty,objectid"`
	Username  *string `json:"username" binding:"omitempty,min=1,max=64"`
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"firstName" binding:"omitempty,max=64"`
	LastName  *string `json:"lastName" binding:"omitempty,max=64"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	Image     *string `json:"image"` // base64 data URI
}

// GetUser godoc
// @Summary Fetch a user profile
// @Tags Users
// @Produce json
// @Param userId query string false "User ID, defaults to the session user"
// @Success 200 {object} UserResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/get [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	var q GetUserQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), sessionUserID(c), userIDOrSession(c, q.UserID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(profile.User, profile.ProfileImageURL))
}

// UpdateUser godoc
// @Summary Edit the session user's profile
// @Tags Users
// @Accept json
// @Produce json
// @Param update body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Username or email taken"
// @Security BearerAuth
// @Router /users/update [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), sessionUserID(c), userIDOrSession(c, req.UserID), service.UpdateProfileInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Image:     req.Image,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(profile.User, profile.ProfileImageURL))
}
