// Package domain 定义了应用程序中使用的核心数据结构 (同时作为 GORM 模型)。
package domain

import "time"

// User 表示一个注册的顾客。
type User struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"_id"`
	Name      string    `gorm:"type:varchar(191)" json:"name"`
	Email     string    `gorm:"type:varchar(191);uniqueIndex:idx_users_email;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"` // bcrypt hash, never the raw password
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
