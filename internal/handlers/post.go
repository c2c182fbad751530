package handlers

import (
	"net/http"

	"fernlink/internal/db"
	"fernlink/internal/models"
	"fernlink/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// fillCommentCounts 批量填充帖子的评论数量（只统计已通过的）
func fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ? AND status = ?", postIDs, models.StatusApproved).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

func (h *PostHandler) List(c *gin.Context) {
	var posts []models.Post
	db.DB.Preload("Author").Order("created_at DESC").Find(&posts)
	fillCommentCounts(posts)
	c.JSON(http.StatusOK, posts)
}

type postRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

func (h *PostHandler) Create(c *gin.Context) {
	user := CurrentUser(c)

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "标题和正文不能为空")
		return
	}

	post := models.Post{
		AuthorID: user.ID,
		Title:    req.Title,
		Body:     req.Body,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "发布失败")
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Get(c *gin.Context) {
	postID := c.Param("pid")

	var post models.Post
	if err := db.DB.Preload("Author").Where("id = ?", postID).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "帖子不存在")
		return
	}
	post.BodyHTML = utils.RenderMarkdown(post.Body)
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Edit(c *gin.Context) {
	user := CurrentUser(c)
	postID := c.Param("pid")

	var post models.Post
	if err := db.DB.Where("id = ?", postID).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "帖子不存在")
		return
	}
	if post.AuthorID != user.ID {
		JSONError(c, http.StatusForbidden, "只能修改自己的帖子")
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "标题和正文不能为空")
		return
	}

	post.Title = req.Title
	post.Body = req.Body
	if err := db.DB.Save(&post).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "修改失败")
		return
	}

	c.JSON(http.StatusOK, post)
}
