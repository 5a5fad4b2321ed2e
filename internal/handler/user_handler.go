package handler

import (
	"errors"
	"net/http"
	"socialgraph/backend/internal/database"
	"socialgraph/backend/internal/models"
	"socialgraph/backend/internal/relationship"
	"socialgraph/backend/pkg/jwt"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Nickname string `json:"nickname" binding:"required" example:"testuser"`
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"testuser"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// PublicUserResponse defines the structure for a user's public profile.
type PublicUserResponse struct {
	ID             uint                    `json:"id" example:"1"`
	Nickname       string                  `json:"nickname" example:"testuser"`
	FriendsCount   int64                   `json:"friends_count"`
	FollowersCount int64                   `json:"followers_count"`
	FollowingCount int64                   `json:"following_count"`
	RelationState  *models.FriendshipState `json:"relation_state,omitempty"`
	IsFollowedByMe bool                    `json:"is_followed_by_me"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID             uint   `json:"id" example:"1"`
	Nickname       string `json:"nickname" example:"testuser"`
	Email          string `json:"email" example:"test@example.com"`
	FriendsCount   int64  `json:"friends_count"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// endregion

// relations returns the relationship service bound to the global database.
func relations() *relationship.Service {
	return relationship.NewService(database.DB)
}

// userIDParam resolves the named path parameter into a user id, writing a
// 400 response and returning false when it is not a valid identifier.
func userIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := relationship.ParseUserID(c.Param(name))
	if errors.Is(err, relationship.ErrInvalidIdentifier) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return id, true
}

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("nickname = ? OR email = ?", input.Nickname, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Nickname or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Nickname:     input.Nickname,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with nickname/email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("nickname = ? OR email = ?", input.Login, input.Login).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// endregion

// region --- User Handlers ---

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for users by nickname with pagination.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for nickname"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[PublicUserResponse]
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users [get]
func SearchUsers(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	searchQuery := c.Query("q")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	query := database.DB.Model(&models.User{}).Where("id <> ?", viewerID.(uint))
	if searchQuery != "" {
		query = query.Where("nickname LIKE ?", "%"+searchQuery+"%")
	}

	paginated, err := Paginate[models.User](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	userResponses := make([]PublicUserResponse, 0, len(paginated.Data))
	for _, user := range paginated.Data {
		userResponses = append(userResponses, buildPublicUserResponse(user, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, PaginatedResponse[PublicUserResponse]{
		Data: userResponses,
		Meta: paginated.Meta,
	})
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Description  Retrieves the public profile for a specific user by their ID. With a token the response includes the viewer's relationship to them; without one the profile is anonymous.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func GetUserByID(c *gin.Context) {
	// Auth is optional here; anonymous viewers get the profile without
	// relationship context.
	var viewerID uint
	if v, ok := c.Get("userID"); ok {
		viewerID = v.(uint)
	}

	targetUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	// If target is the same as viewer, redirect to /me
	if viewerID == targetUserID {
		GetMe(c)
		return
	}

	targetUser, err := relations().UserByID(targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if targetUser == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	response := buildPublicUserResponse(*targetUser, viewerID)
	c.JSON(http.StatusOK, response)
}

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	response := buildPrivateUserResponse(user)
	c.JSON(http.StatusOK, response)
}

// DeleteUser godoc
// @Summary      Delete a user
// @Description  Removes a user and cascades over every friendship and follow edge touching them. Admin only.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  map[string]string "{"message": "User removed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/users/{id} [delete]
func DeleteUser(c *gin.Context) {
	targetUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	svc := relations()
	user, err := svc.UserByID(targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := svc.RemoveUser(targetUserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User removed"})
}

// endregion

// region --- Helpers ---

func buildPublicUserResponse(targetUser models.User, viewerID uint) PublicUserResponse {
	// These counts can be optimized later if performance is an issue
	var friendsCount, followersCount, followingCount int64
	database.DB.Model(&models.Friendship{}).Where("left_user_id = ? AND state = ?", targetUser.ID, models.StateAccepted).Count(&friendsCount)
	database.DB.Model(&models.Follower{}).Where("followed_id = ?", targetUser.ID).Count(&followersCount)
	database.DB.Model(&models.Follower{}).Where("follower_id = ?", targetUser.ID).Count(&followingCount)

	// Relationship between viewer and target
	var relationState *models.FriendshipState
	var edge models.Friendship
	err := database.DB.Where("left_user_id = ? AND right_user_id = ?", viewerID, targetUser.ID).First(&edge).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) && err == nil {
		relationState = &edge.State
	}

	following, _ := relations().IsFollowing(viewerID, targetUser.ID)

	return PublicUserResponse{
		ID:             targetUser.ID,
		Nickname:       targetUser.Nickname,
		FriendsCount:   friendsCount,
		FollowersCount: followersCount,
		FollowingCount: followingCount,
		RelationState:  relationState,
		IsFollowedByMe: following,
	}
}

func buildPrivateUserResponse(user models.User) PrivateUserResponse {
	var friendsCount, followersCount, followingCount int64
	database.DB.Model(&models.Friendship{}).Where("left_user_id = ? AND state = ?", user.ID, models.StateAccepted).Count(&friendsCount)
	database.DB.Model(&models.Follower{}).Where("followed_id = ?", user.ID).Count(&followersCount)
	database.DB.Model(&models.Follower{}).Where("follower_id = ?", user.ID).Count(&followingCount)

	return PrivateUserResponse{
		ID:             user.ID,
		Nickname:       user.Nickname,
		Email:          user.Email,
		FriendsCount:   friendsCount,
		FollowersCount: followersCount,
		FollowingCount: followingCount,
	}
}

// endregion
