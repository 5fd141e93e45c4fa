package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Income 收入记录模型
type Income struct {
	ID           uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID       `json:"user_id" gorm:"type:char(36);index;not null"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	CurrencyCode string          `json:"currency_code" gorm:"size:3;not null;index"`
	Date         time.Time       `json:"date" gorm:"not null;index"`
	Source       string          `json:"source" gorm:"size:100;not null"` // 收入来源
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Income) TableName() string {
	return "incomes"
}

func (i *Income) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Money 当前金额
func (i *Income) Money() Money {
	return Money{amount: i.Amount, currencyCode: i.CurrencyCode}
}

// SetMoney 整体替换金额
func (i *Income) SetMoney(m Money) {
	i.Amount = m.amount
	i.CurrencyCode = m.currencyCode
}
