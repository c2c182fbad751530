package handlers

import (
	"net/http"

	"fernlink/internal/db"
	"fernlink/internal/models"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile 用户公开信息
func (h *UserHandler) Profile(c *gin.Context) {
	var user models.User
	if err := db.DB.First(&user, c.Param("id")).Error; err != nil {
		JSONError(c, http.StatusNotFound, "用户不存在")
		return
	}
	c.JSON(http.StatusOK, user)
}

type settingsRequest struct {
	// AutoreplyTimeout 分钟数；null 表示关闭自动回复
	AutoreplyTimeout *int `json:"autoreply_timeout"`
}

// UpdateSettings 更新自动回复超时配置。
// 该配置只影响之后创建的评论的 autoreply_at，已有截止时间不回溯修改。
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	user := CurrentUser(c)

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "请求格式不正确")
		return
	}

	if req.AutoreplyTimeout != nil {
		if *req.AutoreplyTimeout < 0 || *req.AutoreplyTimeout > models.AutoreplyTimeoutMax {
			JSONError(c, http.StatusBadRequest, "自动回复超时须在 0-1440 分钟之间")
			return
		}
	}

	if err := db.DB.Model(user).Update("autoreply_timeout", req.AutoreplyTimeout).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "保存失败")
		return
	}

	user.AutoreplyTimeout = req.AutoreplyTimeout
	c.JSON(http.StatusOK, user)
}
