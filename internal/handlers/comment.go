package handlers

import (
	"net/http"
	"strconv"
	"time"

	"fernlink/internal/db"
	"fernlink/internal/models"
	"fernlink/internal/services"
	"fernlink/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	moderation services.Enqueuer
}

// NewCommentHandler 构造评论 handler。评论落库后必须立刻入审核队列，
// 所以队列由组装层注入进来。
func NewCommentHandler(moderation services.Enqueuer) *CommentHandler {
	return &CommentHandler{moderation: moderation}
}

type commentRequest struct {
	Body string `json:"body" binding:"required"`
}

// ListByPost 返回帖子下所有已审核通过的评论（公开可见的唯一入口）。
func (h *CommentHandler) ListByPost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("pid"))
	if err != nil {
		JSONError(c, http.StatusBadRequest, "帖子 ID 不合法")
		return
	}

	cacheKey := utils.CommentCacheKey(uint(postID))
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if comments, ok := cached.([]models.Comment); ok {
			c.JSON(http.StatusOK, comments)
			return
		}
	}

	var comments []models.Comment
	db.DB.Preload("Author").
		Where("post_id = ? AND status = ?", postID, models.StatusApproved).
		Order("created_at ASC").
		Find(&comments)

	for i := range comments {
		comments[i].BodyHTML = utils.RenderMarkdown(comments[i].Body)
	}

	utils.GetCache().Set(cacheKey, comments, 1*time.Minute)
	c.JSON(http.StatusOK, comments)
}

// Create 在帖子下发表顶层评论。如果帖子作者配置了自动回复超时，
// 这里计算 autoreply_at = now + timeout*60 一并写入。
func (h *CommentHandler) Create(c *gin.Context) {
	user := CurrentUser(c)
	postID := c.Param("pid")

	var post models.Post
	if err := db.DB.Preload("Author").Where("id = ?", postID).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "帖子不存在")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "评论内容不能为空")
		return
	}

	var autoreplyAt *int64
	if post.Author.AutoreplyTimeout != nil {
		deadline := time.Now().Unix() + int64(*post.Author.AutoreplyTimeout)*60
		autoreplyAt = &deadline
	}

	comment := models.Comment{
		PostID:      post.ID,
		AuthorID:    user.ID,
		Body:        req.Body,
		AutoreplyAt: autoreplyAt,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "评论发布失败")
		return
	}

	// 落库之后立即入审核队列
	h.moderation.Enqueue(comment.ID, comment.Body)
	utils.GetCache().Delete(utils.CommentCacheKey(post.ID))

	c.JSON(http.StatusCreated, comment)
}

// Reply 回复某条顶层评论。回复本身不能再被回复，也不带自动回复截止时间。
func (h *CommentHandler) Reply(c *gin.Context) {
	user := CurrentUser(c)
	commentID := c.Param("cid")

	var original models.Comment
	if err := db.DB.Where("id = ?", commentID).First(&original).Error; err != nil {
		JSONError(c, http.StatusNotFound, "评论不存在")
		return
	}
	if original.ReplyTo != nil {
		JSONError(c, http.StatusBadRequest, "该评论不能被回复")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "回复内容不能为空")
		return
	}

	reply := models.Comment{
		ReplyTo:  &original.ID,
		PostID:   original.PostID,
		AuthorID: user.ID,
		Body:     req.Body,
	}
	if err := db.DB.Create(&reply).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "回复发布失败")
		return
	}

	h.moderation.Enqueue(reply.ID, reply.Body)
	utils.GetCache().Delete(utils.CommentCacheKey(original.PostID))

	c.JSON(http.StatusCreated, reply)
}

// Get 评论详情（含渲染后的 HTML 正文）。
func (h *CommentHandler) Get(c *gin.Context) {
	commentID := c.Param("cid")

	var comment models.Comment
	if err := db.DB.Preload("Author").Where("id = ?", commentID).First(&comment).Error; err != nil {
		JSONError(c, http.StatusNotFound, "评论不存在")
		return
	}
	comment.BodyHTML = utils.RenderMarkdown(comment.Body)
	c.JSON(http.StatusOK, comment)
}

// Edit 修改评论正文。已经有人回复的评论不允许再改；
// 修改后的评论重置为 NOT_REVIEWED 并重新入审核队列。
func (h *CommentHandler) Edit(c *gin.Context) {
	user := CurrentUser(c)
	commentID := c.Param("cid")

	var comment models.Comment
	if err := db.DB.Where("id = ?", commentID).First(&comment).Error; err != nil {
		JSONError(c, http.StatusNotFound, "评论不存在")
		return
	}
	if comment.AuthorID != user.ID {
		JSONError(c, http.StatusForbidden, "只能修改自己的评论")
		return
	}

	var replies int64
	db.DB.Model(&models.Comment{}).Where("reply_to = ?", comment.ID).Count(&replies)
	if replies > 0 {
		JSONError(c, http.StatusConflict, "评论已有回复，不能修改")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "评论内容不能为空")
		return
	}

	updates := map[string]interface{}{
		"body":   req.Body,
		"status": models.StatusNotReviewed,
	}
	if err := db.DB.Model(&comment).Updates(updates).Error; err != nil {
		JSONError(c, http.StatusInternalServerError, "修改失败")
		return
	}

	// 状态机只能从 NOT_REVIEWED 重新开始，改完重新送审
	h.moderation.Enqueue(comment.ID, req.Body)
	utils.GetCache().Delete(utils.CommentCacheKey(comment.PostID))

	comment.Body = req.Body
	comment.Status = models.StatusNotReviewed
	c.JSON(http.StatusOK, comment)
}
