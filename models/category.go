package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category 消费类别，按用户隔离，(user_id, name) 唯一
type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_categories_user_name,priority:1"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_categories_user_name,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// BeforeCreate 未指定 ID 时由服务端生成
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
