package handler

import (
	"net/http"
	"socialgraph/backend/internal/hub"
	"socialgraph/backend/internal/models"
	"time"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// FriendRequestResponse is one pending friend request from the viewer's
// perspective.
type FriendRequestResponse struct {
	Direction   string    `json:"direction" example:"incoming"`
	SenderID    uint      `json:"sender_id" example:"2"`
	Sender      string    `json:"sender" example:"alice"`
	ReceiverID  uint      `json:"receiver_id" example:"1"`
	Receiver    string    `json:"receiver" example:"bob"`
	RequestedAt time.Time `json:"requested_at"`
}

// FriendSuggestionResponse is one friend suggestion involving the viewer.
type FriendSuggestionResponse struct {
	SuggesterID uint      `json:"suggester_id" example:"3"`
	Suggester   string    `json:"suggester" example:"carol"`
	Receivers   []uint    `json:"receivers"`
	CreatedAt   time.Time `json:"created_at"`
}

// SuggestInput names the two users being introduced to each other.
type SuggestInput struct {
	UserID      uint `json:"user_id" binding:"required" example:"2"`
	OtherUserID uint `json:"other_user_id" binding:"required" example:"3"`
}

// endregion

// region --- Friendship Verbs ---

// SendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request to another user. A no-op when the pair is already pending, accepted or blocked.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  map[string]string "{"message": "Request sent successfully"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "No request possible in the current state"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/request [post]
func SendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	if viewerID.(uint) == targetUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot send request to yourself"})
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

	pair, err := svc.SendFriendRequest(viewerID.(uint), targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create relation"})
		return
	}
	if pair.Empty() {
		c.JSON(http.StatusConflict, gin.H{"error": "Relation already exists"})
		return
	}

	hub.GlobalHub.Notify(targetUserID, hub.Event{
		Type:    hub.EventFriendRequest,
		Payload: gin.H{"from_user_id": viewerID.(uint)},
	})

	c.JSON(http.StatusCreated, gin.H{"message": "Request sent successfully"})
}

// AcceptRequest godoc
// @Summary      Accept friend request
// @Description  Accepts a pending friend request from another user and makes both users follow each other.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Request accepted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/accept [post]
func AcceptRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	requestingUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	pair, err := relations().Accept(viewerID.(uint), requestingUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept request"})
		return
	}
	if pair.Empty() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pending request not found"})
		return
	}

	hub.GlobalHub.Notify(requestingUserID, hub.Event{
		Type:    hub.EventFriendAccept,
		Payload: gin.H{"by_user_id": viewerID.(uint)},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Request accepted"})
}

// DeclineRequest godoc
// @Summary      Decline or cancel a friend request
// @Description  Removes a pending request. The receiver declines it, the sender cancels it.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Other User ID"
// @Success      200  {object}  map[string]string "{"message": "Request declined"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/decline [post]
func DeclineRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	otherUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	removed, err := relations().DeclineOrCancel(viewerID.(uint), otherUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decline request"})
		return
	}
	if removed == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pending request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request declined"})
}

// RemoveFriend godoc
// @Summary      Unfriend a user
// @Description  Dissolves an accepted friendship. Follow edges between the users stay in place.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "Friend removed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Friendship not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/remove [post]
func RemoveFriend(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	removed, err := relations().Unfriend(viewerID.(uint), targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove friend"})
		return
	}
	if removed == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Friendship not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}

// BlockUser godoc
// @Summary      Block a user
// @Description  Blocks another user from any current state and removes follow edges in both directions.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "User blocked"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Already blocked"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/block [post]
func BlockUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	if viewerID.(uint) == targetUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot block yourself"})
		return
	}

	pair, err := relations().Block(viewerID.(uint), targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to block user"})
		return
	}
	if pair.Empty() {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already blocked"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User blocked"})
}

// UnblockUser godoc
// @Summary      Unblock a user
// @Description  Lifts a block. Only the user who placed the block may lift it.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "User unblocked"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "No block placed by the caller"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/unblock [post]
func UnblockUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	removed, err := relations().Unblock(viewerID.(uint), targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unblock user"})
		return
	}
	if removed == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No block placed by you on this user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unblocked"})
}

// SuggestFriends godoc
// @Summary      Suggest two users to each other
// @Description  Introduces two of the caller's friends to each other. The caller must be a mutual friend of both and the two must have no existing relationship.
// @Tags         friendship
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SuggestInput true "The two users to introduce"
// @Success      201  {object}  map[string]string "{"message": "Suggestion created"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Not suggestible"
// @Failure      500  {object}  ErrorResponse
// @Router       /suggestions [post]
func SuggestFriends(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input SuggestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.UserID == input.OtherUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot suggest a user to themselves"})
		return
	}

	pair, err := relations().Suggest(viewerID.(uint), input.UserID, input.OtherUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create suggestion"})
		return
	}
	if pair.Empty() {
		c.JSON(http.StatusConflict, gin.H{"error": "These users cannot be suggested to each other"})
		return
	}

	for _, id := range []uint{input.UserID, input.OtherUserID} {
		hub.GlobalHub.Notify(id, hub.Event{
			Type:    hub.EventFriendSuggest,
			Payload: gin.H{"by_user_id": viewerID.(uint)},
		})
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Suggestion created"})
}

// endregion

// region --- Relationship Queries ---

// GetFriends godoc
// @Summary      List friends
// @Description  Returns the users the viewer has accepted friendships with.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/friends [get]
func GetFriends(c *gin.Context) {
	listUsers(c, func(viewerID uint) ([]models.User, error) {
		return relations().Friends(viewerID)
	})
}

// GetBlockedUsers godoc
// @Summary      List blocked users
// @Description  Returns the users the viewer has blocked.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/blocked [get]
func GetBlockedUsers(c *gin.Context) {
	listUsers(c, func(viewerID uint) ([]models.User, error) {
		return relations().BlockedUsers(viewerID)
	})
}

// GetFriendRequests godoc
// @Summary      List friend requests
// @Description  Returns the viewer's pending friend requests, inbox and outbox together.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   FriendRequestResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/requests [get]
func GetFriendRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	requests, err := relations().FriendRequests(viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	responses := make([]FriendRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, FriendRequestResponse{
			Direction:   string(r.Direction),
			SenderID:    r.Sender.ID,
			Sender:      r.Sender.Nickname,
			ReceiverID:  r.Receiver.ID,
			Receiver:    r.Receiver.Nickname,
			RequestedAt: r.RequestedAt,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// GetFriendSuggestions godoc
// @Summary      List friend suggestions
// @Description  Returns suggestions the viewer received or made.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   FriendSuggestionResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/suggestions [get]
func GetFriendSuggestions(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	suggestions, err := relations().FriendSuggestions(viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions"})
		return
	}

	responses := make([]FriendSuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		resp := FriendSuggestionResponse{
			SuggesterID: s.Suggester.ID,
			Suggester:   s.Suggester.Nickname,
			CreatedAt:   s.CreatedAt,
		}
		for _, r := range s.Receivers {
			resp.Receivers = append(resp.Receivers, r.ID)
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, responses)
}

// GetMutualFriends godoc
// @Summary      List mutual friends
// @Description  Returns the users who are friends with both the viewer and the target user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {array}   PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/{id}/mutual-friends [get]
func GetMutualFriends(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, ok := userIDParam(c, "id")
	if !ok {
		return
	}

	users, err := relations().MutualFriends(viewerID.(uint), targetUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch mutual friends"})
		return
	}

	responses := make([]PublicUserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, buildPublicUserResponse(u, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, responses)
}

// listUsers fetches a user set for the viewer and renders public profiles.
func listUsers(c *gin.Context, fetch func(viewerID uint) ([]models.User, error)) {
	viewerID, _ := c.Get("userID")

	users, err := fetch(viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch relations"})
		return
	}

	responses := make([]PublicUserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, buildPublicUserResponse(u, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, responses)
}

// endregion
