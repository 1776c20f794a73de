package api

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=64"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"max=64"`
	LastName  string `json:"lastName" binding:"max=64"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName,omitempty"`
	LastName         string    `json:"lastName,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	ProfileImageURL  string    `json:"profileImageUrl,omitempty"`
	CurrentWorkoutID *string   `json:"currentWorkout,omitempty"`
	SavedWorkoutIDs  []string  `json:"savedWorkouts"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// LoginRequest identifies the user by username or email.
type LoginRequest struct {
	Username string `json:"username" binding:"required_without=Email"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// LogoutRequest is optional; the Authorization header is preferred.
type LogoutRequest struct {
	Token string `json:"token"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} UserResponse "User created successfully"
// @Failure 400 {object} ErrorResponse "Invalid input (validation error)"
// @Failure 409 {object} ErrorResponse "Conflict (username or email already exists)"
// @Router /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user, ""))
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a session token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} ErrorResponse "Invalid input (validation error)"
// @Failure 401 {object} ErrorResponse "Unauthorized (invalid credentials)"
// @Router /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      MapUserToResponse(result.User, ""),
	})
}

// Logout godoc
// @Summary Revoke the current session
// @Description Always succeeds, even for unknown or already revoked tokens.
// @Tags Auth
// @Produce json
// @Success 200 {object} gin.H
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		var req LogoutRequest
		// An empty or malformed body just means there is nothing to revoke.
		_ = c.ShouldBindJSON(&req)
		token = req.Token
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
// Crucially excludes PasswordHash and converts ObjectIDs to strings.
func MapUserToResponse(user *domain.User, imageURL string) UserResponse {
	if user == nil {
		return UserResponse{}
	}

	resp := UserResponse{
		ID:              user.ID.Hex(),
		Username:        user.Username,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Bio:             user.Bio,
		ProfileImageURL: imageURL,
		SavedWorkoutIDs: hexIDs(user.SavedWorkoutIDs),
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
	if user.HasActiveWorkout() {
		current := user.CurrentWorkoutID.Hex()
		resp.CurrentWorkoutID = &current
	}
	return resp
}
