package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Routes groups the handlers served by the API
type Routes struct {
	Session *SessionHandler
	Profile *ProfileHandler
	Chat    *ChatHandler
	// Files is optional; it is only mounted when objects are served locally
	Files *FileHandler
}

// Register mounts all routes on r
func (rt Routes) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		// Session endpoints
		api.GET("/session", rt.Session.GetSession)
		api.POST("/session/login", rt.Session.Login)
		api.POST("/session/signup", rt.Session.Signup)
		api.POST("/session/logout", rt.Session.Logout)
		api.PUT("/session/password", rt.Session.ChangePassword)
		api.GET("/notifications", rt.Session.GetNotification)

		// Profile endpoints
		api.GET("/profile", rt.Profile.GetProfile)
		api.PUT("/profile", rt.Profile.UpdateProfile)

		// Chat endpoints
		api.POST("/chat/messages", rt.Chat.SendMessage)
		api.GET("/chat/messages", rt.Chat.GetMessages)
	}

	if rt.Files != nil {
		r.GET("/files/:bucket/:id", rt.Files.GetFile)
	}
}
