package api

import (
	"fmt"
	"strings"
	"time"

	"mybudget/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// 请求中可接受的时间格式，依次尝试
var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", dateLayout}

// ListQuery 列表查询公共参数
type ListQuery struct {
	Page         int    `form:"page" example:"1"`
	PageSize     int    `form:"page_size" example:"20"`
	CurrencyCode string `form:"currency_code" example:"PLN"`
	Amount       string `form:"amount" example:"12.50"`
	MinAmount    string `form:"min_amount" example:"10"`
	MaxAmount    string `form:"max_amount" example:"100"`
	FromDate     string `form:"from_date" example:"2024-01-01"`
	ToDate       string `form:"to_date" example:"2024-12-31"`
	SortBy       string `form:"sort_by" example:"date"`
	SortDesc     *bool  `form:"sort_desc" example:"true"`
}

// RangeQuery 统计与导出的时间范围参数
type RangeQuery struct {
	FromDate string `form:"from_date" example:"2024-01-01"`
	ToDate   string `form:"to_date" example:"2024-12-31"`
}

// parseTime 解析时间；仅有日期的结束时间取当天最后一刻
func parseTime(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == dateLayout && endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("时间格式错误: %q，应为 2006-01-02 或 RFC3339", s)
}

func parseOptionalTime(s string, endOfDay bool) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseTime(s, endOfDay)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseOptionalDecimal(name, s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%s 不是有效的金额", name)
	}
	return &d, nil
}

func (q RangeQuery) dateRange() (models.DateRange, error) {
	from, err := parseOptionalTime(q.FromDate, false)
	if err != nil {
		return models.DateRange{}, err
	}
	to, err := parseOptionalTime(q.ToDate, true)
	if err != nil {
		return models.DateRange{}, err
	}
	return models.DateRange{From: from, To: to}, nil
}

func (q ListQuery) amountRange() (models.AmountRange, error) {
	var r models.AmountRange
	var err error
	if r.Exact, err = parseOptionalDecimal("amount", q.Amount); err != nil {
		return r, err
	}
	if r.Min, err = parseOptionalDecimal("min_amount", q.MinAmount); err != nil {
		return r, err
	}
	if r.Max, err = parseOptionalDecimal("max_amount", q.MaxAmount); err != nil {
		return r, err
	}
	return r, nil
}

func (q ListQuery) page() models.Page {
	return models.Page{Page: q.Page, PageSize: q.PageSize}.Normalize()
}

// sortDesc 未指定时默认倒序（最新的在前）
func (q ListQuery) sortDesc() bool {
	return q.SortDesc == nil || *q.SortDesc
}

func (q ListQuery) common() (models.AmountRange, models.DateRange, error) {
	amount, err := q.amountRange()
	if err != nil {
		return amount, models.DateRange{}, err
	}
	dates, err := RangeQuery{FromDate: q.FromDate, ToDate: q.ToDate}.dateRange()
	return amount, dates, err
}

// pathID 解析路径中的 :id
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		BadRequest(c, "无效的ID")
		return uuid.Nil, false
	}
	return id, true
}

// optionalTime 请求体中的可选时间字段
func optionalTime(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseTime(*s, false)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
