package router

import (
	"fernlink/internal/db"
	"fernlink/internal/handlers"
	"fernlink/internal/middleware"
	"fernlink/internal/services"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, moderation services.Enqueuer, store *db.CommentStore) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler(moderation)
	userHandler := handlers.NewUserHandler()
	adminHandler := handlers.NewAdminHandler(store)

	// 公共路由 (Public Routes)
	r.POST("/signup", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	r.GET("/posts", postHandler.List)
	r.GET("/posts/:pid", postHandler.Get)
	r.GET("/posts/:pid/comments", commentHandler.ListByPost) // 只返回已通过的评论
	r.GET("/comments/:cid", commentHandler.Get)
	r.GET("/users/:id", userHandler.Profile)

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", postHandler.Create)
		authorized.POST("/posts/:pid/edit", postHandler.Edit)
		authorized.POST("/posts/:pid/comments", commentHandler.Create)
		authorized.POST("/comments/:cid/reply", commentHandler.Reply)
		authorized.POST("/comments/:cid/edit", commentHandler.Edit)
		authorized.POST("/settings", userHandler.UpdateSettings)

		authorized.GET("/admin/stats/comments", adminHandler.CommentStats)
	}
}
