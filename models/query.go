package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultPageSize 未指定或非法时的每页数量
	DefaultPageSize = 20
	// MaxPageSize 每页数量上限
	MaxPageSize = 50
)

// 排序字段
const (
	SortByDate   = "date"
	SortByAmount = "amount"
	SortBySource = "source"
)

// Page 分页参数，页码从 1 开始
type Page struct {
	Page     int
	PageSize int
}

// Normalize 页码小于1按1处理；每页数量小于1取默认值，超过上限截断
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset 当前页的偏移量（需先 Normalize）
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// AmountRange 金额筛选条件，nil 表示不限
type AmountRange struct {
	Exact *decimal.Decimal
	Min   *decimal.Decimal
	Max   *decimal.Decimal
}

// DateRange 日期筛选条件（两端包含），nil 表示不限
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ExpenseFilter 消费记录列表查询条件，各条件之间为 AND
type ExpenseFilter struct {
	CategoryName string
	CurrencyCode string
	Amount       AmountRange
	Date         DateRange
	SortBy       string
	SortDesc     bool
	Page         Page

	// CategoryID 由服务层根据 CategoryName 解析后填入
	CategoryID *uuid.UUID
}

// Normalize 规范化查询条件
func (f ExpenseFilter) Normalize() ExpenseFilter {
	f.CategoryName = strings.TrimSpace(f.CategoryName)
	f.CurrencyCode = normalizeCurrency(f.CurrencyCode)
	f.SortBy = normalizeSortBy(f.SortBy, SortByDate, SortByAmount)
	f.Page = f.Page.Normalize()
	return f
}

// IncomeFilter 收入记录列表查询条件，各条件之间为 AND
type IncomeFilter struct {
	Source       string
	CurrencyCode string
	Amount       AmountRange
	Date         DateRange
	SortBy       string
	SortDesc     bool
	Page         Page
}

// Normalize 规范化查询条件
func (f IncomeFilter) Normalize() IncomeFilter {
	f.Source = strings.TrimSpace(f.Source)
	f.CurrencyCode = normalizeCurrency(f.CurrencyCode)
	f.SortBy = normalizeSortBy(f.SortBy, SortByDate, SortByAmount, SortBySource)
	f.Page = f.Page.Normalize()
	return f
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// normalizeSortBy 不区分大小写；不在 allowed 中时回退到 allowed[0]
func normalizeSortBy(sortBy string, allowed ...string) string {
	s := strings.ToLower(strings.TrimSpace(sortBy))
	for _, a := range allowed {
		if s == a {
			return a
		}
	}
	return allowed[0]
}
