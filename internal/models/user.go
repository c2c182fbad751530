package models

import (
	"time"
)

// AutoreplyTimeoutMax 自动回复超时的上限（分钟，24 小时）
const AutoreplyTimeoutMax = 24 * 60

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash
	// AutoreplyTimeout 作者配置的自动回复等待时间（分钟，0-1440）。
	// NULL 表示该作者关闭自动回复，新评论不会带截止时间。
	AutoreplyTimeout *int      `json:"autoreply_timeout"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
