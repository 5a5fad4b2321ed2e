package main

import (
	"fmt"
	"log"
	"net/http"

	"socialgraph/backend/internal/auth"
	"socialgraph/backend/internal/config"
	"socialgraph/backend/internal/database"
	"socialgraph/backend/internal/handler"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "socialgraph/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Socialgraph API
// @version         1.0
// @description     Friendship, follow, block and suggestion API for the social graph service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// Public profile route: a token is honored but not required
		publicUserRoutes := apiV1.Group("/users")
		publicUserRoutes.Use(auth.OptionalAuthMiddleware())
		{
			publicUserRoutes.GET("/:id", handler.GetUserByID)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.SearchUsers)
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.GET("/me/friends", handler.GetFriends)
			userRoutes.GET("/me/blocked", handler.GetBlockedUsers)
			userRoutes.GET("/me/requests", handler.GetFriendRequests)
			userRoutes.GET("/me/suggestions", handler.GetFriendSuggestions)
			userRoutes.GET("/me/followers", handler.GetFollowers)
			userRoutes.GET("/me/followings", handler.GetFollowings)
			userRoutes.GET("/:id/mutual-friends", handler.GetMutualFriends)

			// Friendship routes
			userRoutes.POST("/:id/request", handler.SendRequest)
			userRoutes.POST("/:id/accept", handler.AcceptRequest)
			userRoutes.POST("/:id/decline", handler.DeclineRequest)
			userRoutes.POST("/:id/remove", handler.RemoveFriend)
			userRoutes.POST("/:id/block", handler.BlockUser)
			userRoutes.POST("/:id/unblock", handler.UnblockUser)

			// Follow routes
			userRoutes.POST("/:id/follow", handler.FollowUser)
			userRoutes.POST("/:id/unfollow", handler.UnfollowUser)
			userRoutes.POST("/:id/snooze", handler.SnoozeUser)
			userRoutes.POST("/:id/unsnooze", handler.UnsnoozeUser)
		}

		// Suggestion routes (protected)
		suggestionRoutes := apiV1.Group("/suggestions")
		suggestionRoutes.Use(auth.AuthMiddleware())
		{
			suggestionRoutes.POST("", handler.SuggestFriends)
		}

		// Event stream (protected)
		eventRoutes := apiV1.Group("/events")
		eventRoutes.Use(auth.AuthMiddleware())
		{
			eventRoutes.GET("", handler.StreamEvents)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.DELETE("/users/:id", handler.DeleteUser)
		}
	}

	fmt.Printf("Server is running on %s\n", config.AppConfig.ListenAddr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(config.AppConfig.ListenAddr))
}
