package handlers

import (
	"net/http"
	"time"

	"fernlink/internal/db"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	store *db.CommentStore
}

func NewAdminHandler(store *db.CommentStore) *AdminHandler {
	return &AdminHandler{store: store}
}

// CommentStats 按天统计各审核状态的评论数量。
// GET /admin/stats/comments?from=2026-01-01&to=2026-01-31
func (h *AdminHandler) CommentStats(c *gin.Context) {
	dateFrom := c.Query("from")
	dateTo := c.Query("to")

	if _, err := time.Parse("2006-01-02", dateFrom); err != nil {
		JSONError(c, http.StatusBadRequest, "日期格式请使用 YYYY-MM-DD")
		return
	}
	if _, err := time.Parse("2006-01-02", dateTo); err != nil {
		JSONError(c, http.StatusBadRequest, "日期格式请使用 YYYY-MM-DD")
		return
	}

	stats, err := h.store.CommentStatsByDate(dateFrom, dateTo)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "查询失败")
		return
	}

	// 按天聚合成 {date, not_reviewed, approved, rejected}
	var result []gin.H
	var current gin.H
	currentDay := ""
	for _, stat := range stats {
		if stat.Day != currentDay {
			currentDay = stat.Day
			current = gin.H{"date": currentDay}
			result = append(result, current)
		}
		current[stat.Status.String()] = stat.Count
	}
	if result == nil {
		result = []gin.H{}
	}

	c.JSON(http.StatusOK, result)
}
