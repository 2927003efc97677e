package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/utpal74/track-my-tasks-api/handlers"
)

func SetupRoutes(router *gin.Engine, authHandler *handlers.AuthHandler, taskHandler *handlers.TasksHandler,
	categoryHandler *handlers.CategoriesHandler, statsHandler *handlers.StatsHandler) {
	router.GET("/", handlers.StatusHandler)

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.SignUpHandler)
		authRoutes.POST("/login", authHandler.SignInHandler)
		authRoutes.GET("/oauth/:provider/login", authHandler.OAuthLoginHandler)
		authRoutes.GET("/oauth/:provider/callback", authHandler.OAuthCallbackHandler)
		authRoutes.GET("/me", authHandler.Protect(authHandler.MeHandler))
		authRoutes.DELETE("/me", authHandler.Protect(authHandler.DeleteMeHandler))
	}

	// authenticated api request
	protect := authHandler.Protect
	{
		api.GET("/tasks", protect(taskHandler.GetAllTasksHandler))
		api.POST("/tasks", protect(taskHandler.NewTaskHandler))
		api.GET("/tasks/:id", protect(taskHandler.SearchTaskHandler))
		api.PUT("/tasks/:id", protect(taskHandler.UpdateTaskHandler))
		api.DELETE("/tasks/:id", protect(taskHandler.DeleteTaskHandler))

		api.GET("/categories", protect(categoryHandler.GetAllCategoriesHandler))
		api.POST("/categories", protect(categoryHandler.NewCategoryHandler))
		api.PUT("/categories/:id", protect(categoryHandler.UpdateCategoryHandler))
		api.DELETE("/categories/:id", protect(categoryHandler.DeleteCategoryHandler))

		api.GET("/stats", protect(statsHandler.GetStatsHandler))
	}
}
