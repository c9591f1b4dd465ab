package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"failboard/internal/bot"
	"failboard/internal/handlers"
	"failboard/internal/middleware"
	"failboard/internal/models"
	"failboard/internal/services"
)

// RegisterRoutes wires the JSON API and, when the bot runs in webhook
// mode, the Telegram ingress endpoint. Voting has no HTTP route: it is
// bot-only.
func RegisterRoutes(r *gin.Engine,
	auth *services.AuthService,
	users *services.UserService,
	posts *services.PostService,
	apiInitialStatus models.PostStatus,
	tgBot *bot.Bot,
) {
	authHandler := handlers.NewAuthHandler(auth)
	userHandler := handlers.NewUserHandler(users)
	postHandler := handlers.NewPostHandler(posts, apiInitialStatus)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.LoadUser(auth))

	// Public routes
	v1.POST("/users", authHandler.Login)
	v1.POST("/users/create", authHandler.Register)
	v1.GET("/posts", postHandler.List)
	v1.GET("/posts/:id", postHandler.Detail)

	// Protected routes
	authorized := v1.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/users/me", userHandler.Me)
		authorized.PATCH("/users/me", userHandler.UpdateMe)

		authorized.POST("/posts", postHandler.Create)
		authorized.PUT("/posts/:id", postHandler.Update)
		authorized.PUT("/posts/:id/status", postHandler.SetStatus)
		authorized.DELETE("/posts/:id", postHandler.Delete)
	}

	if tgBot != nil {
		r.POST("/bot/webhook", func(c *gin.Context) {
			var update tgbotapi.Update
			if err := c.ShouldBindJSON(&update); err != nil {
				c.Status(http.StatusBadRequest)
				return
			}
			// Respond to Telegram immediately; the update is processed
			// in the background.
			go tgBot.HandleWebhookUpdate(update)
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	}
}
