package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense 消费记录模型
type Expense struct {
	ID           uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID       `json:"user_id" gorm:"type:char(36);index;not null"`
	CategoryID   uuid.UUID       `json:"category_id" gorm:"type:char(36);index;not null"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	CurrencyCode string          `json:"currency_code" gorm:"size:3;not null;index"`
	Date         time.Time       `json:"date" gorm:"not null;index"`
	Note         *string         `json:"note,omitempty" gorm:"size:500"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	// 被消费记录引用的类别不允许删除
	Category Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}

// BeforeCreate 未指定 ID 时由服务端生成
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Money 当前金额
func (e *Expense) Money() Money {
	return Money{amount: e.Amount, currencyCode: e.CurrencyCode}
}

// SetMoney 整体替换金额
func (e *Expense) SetMoney(m Money) {
	e.Amount = m.amount
	e.CurrencyCode = m.currencyCode
}
