package handlers

import (
	"fernlink/internal/middleware"
	"fernlink/internal/models"

	"github.com/gin-gonic/gin"
)

// CurrentUser 从上下文取出已登录用户（由 LoadUser 中间件写入）。
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(middleware.CheckUserKey); exists {
		return u.(*models.User)
	}
	return nil
}

// JSONError 统一的错误响应格式
func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
