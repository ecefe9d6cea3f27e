package model

import "time"

// User 用户（密码仅存 bcrypt 哈希，不参与序列化）
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(100)" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex:idx_user_email;not null" json:"email"`
	Password  string    `gorm:"type:varchar(100);not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

func (User) TableName() string { return "users" }
