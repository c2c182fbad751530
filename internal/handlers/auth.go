package handlers

import (
	"net/http"
	"strings"

	"fernlink/internal/db"
	"fernlink/internal/models"
	"fernlink/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register 注册新用户。用户名取邮箱 @ 前缀。
func (h *AuthHandler) Register(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "邮箱或密码格式不正确")
		return
	}

	if len(req.Password) < 6 {
		JSONError(c, http.StatusBadRequest, "密码至少6位")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "注册失败")
		return
	}

	user := models.User{
		Username: strings.Split(req.Email, "@")[0],
		Email:    req.Email,
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		JSONError(c, http.StatusConflict, "邮箱已注册")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "请求格式不正确")
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		JSONError(c, http.StatusUnauthorized, "邮箱或密码错误")
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		JSONError(c, http.StatusUnauthorized, "邮箱或密码错误")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"detail": "已退出登录"})
}
