package db

import (
	"errors"
	"fmt"

	"fernlink/internal/models"
	"fernlink/internal/utils"

	"gorm.io/gorm"
)

// AutoreplyCandidate 自动回复调度器一次 tick 需要的最小数据集：
// 评论本身、所在帖子以及帖子作者（回复将以帖子作者身份发出）。
type AutoreplyCandidate struct {
	CommentID    uint   `gorm:"column:comment_id"`
	Body         string `gorm:"column:body"`
	PostID       uint   `gorm:"column:post_id"`
	PostAuthorID uint   `gorm:"column:post_author_id"`
}

// DailyCommentStat 按天、按状态统计评论数量（管理端报表）。
type DailyCommentStat struct {
	Day    string               `gorm:"column:day" json:"date"`
	Status models.CommentStatus `gorm:"column:status" json:"status"`
	Count  int64                `gorm:"column:count" json:"count"`
}

// CommentStore 封装核心流程（审核 worker 与自动回复调度器）
// 对评论表的全部写读操作。每个方法都是单语句或单事务，
// 调用方不会跨慢调用（分类、生成）持有事务。
type CommentStore struct {
	db *gorm.DB
}

func NewCommentStore(g *gorm.DB) *CommentStore {
	return &CommentStore{db: g}
}

// UpdateStatus 按 ID 写入审核结果。行不存在视为 no-op；
// 已处于终态的评论不再被覆盖，重复投递同一结果因此幂等。
// 状态写入后丢弃该帖子的评论列表缓存，刚通过的评论立即可见。
func (s *CommentStore) UpdateStatus(commentID uint, status models.CommentStatus) error {
	var comment models.Comment
	err := s.db.Select("id", "post_id", "status").
		Where("id = ?", commentID).
		First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load comment %d: %w", commentID, err)
	}
	if comment.Status.Terminal() {
		return nil
	}

	res := s.db.Model(&models.Comment{}).
		Where("id = ?", commentID).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update comment %d status: %w", commentID, res.Error)
	}

	utils.GetCache().Delete(utils.CommentCacheKey(comment.PostID))
	return nil
}

// EligibleForAutoreply 返回所有到期待回复的评论：
// 已审核通过、顶层、评论者不是帖子作者、截止时间早于 now。
// autoreply_at IS NULL 的行（已处理或未配置）天然不会命中。
func (s *CommentStore) EligibleForAutoreply(now int64) ([]AutoreplyCandidate, error) {
	var candidates []AutoreplyCandidate
	err := s.db.Table("comments AS c").
		Select("c.id AS comment_id, c.body AS body, c.post_id AS post_id, p.author_id AS post_author_id").
		Joins("INNER JOIN posts p ON p.id = c.post_id").
		Where("c.status = ?", models.StatusApproved).
		Where("c.reply_to IS NULL").
		Where("c.author_id <> p.author_id").
		Where("c.autoreply_at < ?", now).
		Scan(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("query autoreply candidates: %w", err)
	}
	return candidates, nil
}

// CreateAutoreply 在同一个事务里清空原评论的截止时间并插入回复评论。
// 截止时间只在回复确实落库之后消失，生成失败的评论下个 tick 会重试。
// 原评论已不存在时整体放弃（返回 gorm.ErrRecordNotFound 包装）。
func (s *CommentStore) CreateAutoreply(commentID, postID, postAuthorID uint, body string) (uint, error) {
	reply := models.Comment{
		ReplyTo:  &commentID,
		PostID:   postID,
		AuthorID: postAuthorID,
		Body:     body,
		// AutoreplyAt 保持 NULL，自动回复自身不再触发自动回复
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			Update("autoreply_at", nil)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(&reply).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("comment %d vanished before autoreply: %w", commentID, err)
		}
		return 0, fmt.Errorf("post autoreply to comment %d: %w", commentID, err)
	}

	utils.GetCache().Delete(utils.CommentCacheKey(postID))
	return reply.ID, nil
}

// CommentStatsByDate 管理端日报：日期区间内按天、按状态的评论数。
func (s *CommentStore) CommentStatsByDate(dateFrom, dateTo string) ([]DailyCommentStat, error) {
	var stats []DailyCommentStat
	err := s.db.Model(&models.Comment{}).
		Select("DATE(created_at) AS day, status, COUNT(*) AS count").
		Where("DATE(created_at) >= ? AND DATE(created_at) <= ?", dateFrom, dateTo).
		Group("day, status").
		Order("day").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("query comment stats: %w", err)
	}
	return stats, nil
}
