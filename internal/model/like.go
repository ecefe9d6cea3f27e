package model

import "time"

// Like 点赞关系（user 对 post 至多一条）
type Like struct {
	ID     string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID string `gorm:"type:varchar(36);index:idx_like_pair,unique;not null" json:"userId"`
	PostID string `gorm:"type:varchar(36);not null;index:idx_like_pair,unique;index:idx_like_post" json:"postId"`
	// 复合唯一键，并发重复点赞由它兜底
	// idx_like_pair = (user_id, post_id)
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Like) TableName() string { return "likes" }
