package models

import (
	"time"
)

// CommentStatus 评论审核状态机的状态值。
// 数值与数据库存储一致，不要改动顺序。
type CommentStatus int

const (
	StatusNotReviewed CommentStatus = iota // 初始状态，等待分类
	StatusApproved                         // 审核通过，公开可见
	StatusRejected                         // 审核拒绝
)

func (s CommentStatus) String() string {
	switch s {
	case StatusNotReviewed:
		return "not_reviewed"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	}
	return "unknown"
}

// Terminal reports whether the status permits no further transition.
// 状态机只允许 NOT_REVIEWED -> APPROVED / REJECTED，编辑评论时
// 由 handler 先重置回 NOT_REVIEWED 再重新入队。
func (s CommentStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Comment struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	ReplyTo  *uint    `gorm:"index" json:"reply_to"` // Nullable, 顶层评论为 NULL；回复不能再被回复
	Parent   *Comment `gorm:"foreignKey:ReplyTo;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID   uint     `gorm:"not null;index" json:"post_id"`
	Post     Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID uint     `gorm:"not null;index" json:"author_id"`
	Author   User     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Body     string   `gorm:"type:text;not null" json:"body"`
	// Status 只由审核队列 worker 在 NOT_REVIEWED 之后写入
	Status CommentStatus `gorm:"default:0;index" json:"status"`
	// AutoreplyAt 自动回复截止时间（epoch 秒）。创建时根据帖子作者配置计算，
	// 自动回复成功发出时清空为 NULL，防止重复派发。
	AutoreplyAt *int64    `gorm:"index" json:"autoreply_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 非数据库字段，详情接口返回渲染后的 HTML
	BodyHTML string `gorm:"-" json:"body_html,omitempty"`
}
