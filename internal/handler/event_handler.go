package handler

import (
	"io"
	"socialgraph/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

// StreamEvents godoc
// @Summary      Stream relationship events
// @Description  Server-sent event stream of friend-request, accept, suggestion and follow events addressed to the viewer.
// @Tags         events
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {string}  string  "event stream"
// @Failure      401  {object}  ErrorResponse
// @Router       /events [get]
func StreamEvents(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	client := make(hub.Client, 16)
	hub.GlobalHub.Subscribe(viewerID.(uint), client)
	defer hub.GlobalHub.Unsubscribe(viewerID.(uint), client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(message))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
