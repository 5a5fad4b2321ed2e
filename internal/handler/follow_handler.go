package handler

import (
	"net/http"
	"socialgraph/backend/internal/hub"
	"socialgraph/backend/internal/models"
	"socialgraph/backend/internal/relationship"
	"time"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// SnoozeInput carries the snooze duration.
type SnoozeInput struct {
	Days int `json:"days" example:"30"`
}

// FollowResponse describes one directional follow edge.
type FollowResponse struct {
	FollowerID uint       `json:"follower_id" example:"1"`
	FollowedID uint       `json:"followed_id" example:"2"`
	IsSnoozed  bool       `json:"is_snoozed"`
	Expiration *time.Time `json:"expiration,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func buildFollowResponse(f *models.Follower) FollowResponse {
	return FollowResponse{
		FollowerID: f.FollowerID,
		FollowedID: f.FollowedID,
		IsSnoozed:  f.IsSnoozed,
		Expiration: f.Expiration,
		CreatedAt:  f.CreatedAt,
	}
}

// endregion

// region --- Follow Verbs ---

// FollowUser godoc
// @Summary      Follow a user
// @Description  Creates a directional follow edge. A no-op when already following or when a block exists between the users.
// @Tags         follow
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  FollowResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "Already following or blocked"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/follow [post]
func FollowUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	if viewerID.(uint) == targetUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		return
	}

	svc := relations()
	target, err := svc.UserByID(targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
		return
	}

	edge, err := svc.Follow(viewerID.(uint), targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
		return
	}
	if edge == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already following, or a block exists"})
		return
	}

	hub.GlobalHub.Notify(targetUserID, hub.Event{
		Type:    hub.EventFollow,
		Payload: gin.H{"follower_id": viewerID.(uint)},
	})

	c.JSON(http.StatusCreated, buildFollowResponse(edge))
}

// UnfollowUser godoc
// @Summary      Unfollow a user
// @Description  Removes the viewer's directional follow edge.
// @Tags         follow
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "Unfollowed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Not following"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/unfollow [post]
func UnfollowUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	removed, err := relations().Unfollow(viewerID.(uint), targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow user"})
		return
	}
	if removed == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not following this user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed"})
}

// SnoozeUser godoc
// @Summary      Snooze a followed user
// @Description  Temporarily mutes a followed user. Defaults to 30 days when no duration is given.
// @Tags         follow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true   "Target User ID"
// @Param        input body      SnoozeInput  false  "Snooze duration"
// @Success      200  {object}  FollowResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Not following or already snoozed"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/snooze [post]
func SnoozeUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	input := SnoozeInput{Days: relationship.DefaultSnoozeDays}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	edge, err := relations().Snooze(viewerID.(uint), targetUserID, input.Days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to snooze user"})
		return
	}
	if edge == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Not following this user, or already snoozed"})
		return
	}

	c.JSON(http.StatusOK, buildFollowResponse(edge))
}

// UnsnoozeUser godoc
// @Summary      Unsnooze a followed user
// @Description  Lifts an active snooze on a followed user.
// @Tags         follow
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  FollowResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Not snoozed"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/unsnooze [post]
func UnsnoozeUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	edge, err := relations().Unsnooze(viewerID.(uint), targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsnooze user"})
		return
	}
	if edge == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "No active snooze on this user"})
		return
	}

	c.JSON(http.StatusOK, buildFollowResponse(edge))
}

// endregion

// region --- Follow Queries ---

// GetFollowers godoc
// @Summary      List followers
// @Description  Returns the users following the viewer.
// @Tags         follow
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/followers [get]
func GetFollowers(c *gin.Context) {
	listUsers(c, func(viewerID uint) ([]models.User, error) {
		return relations().Followers(viewerID)
	})
}

// GetFollowings godoc
// @Summary      List followings
// @Description  Returns the users the viewer is following.
// @Tags         follow
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/followings [get]
func GetFollowings(c *gin.Context) {
	listUsers(c, func(viewerID uint) ([]models.User, error) {
		return relations().Followings(viewerID)
	})
}

// endregion
