package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidMoney 金额或币种不合法
var ErrInvalidMoney = errors.New("invalid money")

// Money 金额值对象：金额 + ISO 4217 币种代码
// 构造后不可变，修改金额需重新 NewMoney 并整体替换
type Money struct {
	amount       decimal.Decimal
	currencyCode string
}

// NewMoney 构造金额，金额不能为负，币种代码必须为3位字母（统一转大写）
func NewMoney(amount decimal.Decimal, currencyCode string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: 金额不能为负数", ErrInvalidMoney)
	}
	code := strings.TrimSpace(currencyCode)
	if code == "" {
		return Money{}, fmt.Errorf("%w: 币种不能为空", ErrInvalidMoney)
	}
	if !isCurrencyCode(code) {
		return Money{}, fmt.Errorf("%w: 币种必须为3位 ISO 4217 字母代码（如 PLN、USD）", ErrInvalidMoney)
	}
	return Money{amount: amount, currencyCode: strings.ToUpper(code)}, nil
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

// Amount 金额
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// CurrencyCode 币种代码（大写）
func (m Money) CurrencyCode() string {
	return m.currencyCode
}

// Equal 金额与币种均相同
func (m Money) Equal(other Money) bool {
	return m.currencyCode == other.currencyCode && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currencyCode
}
