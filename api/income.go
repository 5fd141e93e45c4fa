package api

import (
	"strings"
	"time"

	"mybudget/middleware"
	"mybudget/models"
	"mybudget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// IncomeHandler 收入记录处理器
type IncomeHandler struct {
	incomes  *service.IncomeService
	accounts *service.AccountService
}

// NewIncomeHandler 创建收入记录处理器
func NewIncomeHandler(incomes *service.IncomeService, accounts *service.AccountService) *IncomeHandler {
	return &IncomeHandler{incomes: incomes, accounts: accounts}
}

// CreateIncomeRequest 创建收入记录请求
type CreateIncomeRequest struct {
	Amount       decimal.Decimal `json:"amount" swaggertype:"number" example:"5000"`
	CurrencyCode string          `json:"currency_code" example:"PLN"` // 为空时使用账号默认币种
	Date         string          `json:"date" example:"2024-01-10"`
	Source       string          `json:"source" binding:"required" example:"工资"`
}

// UpdateIncomeRequest 更新收入记录请求，未传的字段保持不变
type UpdateIncomeRequest struct {
	Amount       *decimal.Decimal `json:"amount" swaggertype:"number" example:"5000"`
	CurrencyCode *string          `json:"currency_code" example:"PLN"`
	Date         *string          `json:"date" example:"2024-01-10"`
	Source       *string          `json:"source" example:"工资"`
}

// IncomeListQuery 收入记录列表查询参数
type IncomeListQuery struct {
	ListQuery
	Source string `form:"source" example:"工资"`
}

// Create 创建收入记录
// @Summary 创建收入记录
// @Tags 收入记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIncomeRequest true "收入记录信息"
// @Success 201 {object} Response{data=models.Income} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/incomes [post]
func (h *IncomeHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		t, err := parseTime(req.Date, false)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		date = t
	}

	currency := req.CurrencyCode
	if strings.TrimSpace(currency) == "" {
		user, err := h.accounts.Current(c.Request.Context(), userID)
		if err != nil {
			ServiceError(c, err, "查询用户失败")
			return
		}
		currency = user.Currency
	}

	income, err := h.incomes.Add(c.Request.Context(), userID, service.IncomeInput{
		Amount:       req.Amount,
		CurrencyCode: currency,
		Date:         date,
		Source:       req.Source,
	})
	if err != nil {
		ServiceError(c, err, "创建收入记录失败")
		return
	}
	Created(c, "/api/v1/incomes/"+income.ID.String(), income)
}

// List 获取收入记录列表
// @Summary 获取收入记录列表
// @Tags 收入记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量，最大 50" default(20)
// @Param source query string false "收入来源（精确匹配）"
// @Param currency_code query string false "币种"
// @Param amount query number false "金额（精确匹配）"
// @Param min_amount query number false "最小金额"
// @Param max_amount query number false "最大金额"
// @Param from_date query string false "开始时间 (2024-01-01 或 RFC3339)"
// @Param to_date query string false "结束时间 (2024-12-31 或 RFC3339)"
// @Param sort_by query string false "排序字段 date|amount|source" default(date)
// @Param sort_desc query bool false "是否倒序" default(true)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Income}} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/incomes [get]
func (h *IncomeHandler) List(c *gin.Context) {
	var q IncomeListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	amount, dates, err := q.common()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	filter := models.IncomeFilter{
		Source:       q.Source,
		CurrencyCode: q.CurrencyCode,
		Amount:       amount,
		Date:         dates,
		SortBy:       q.SortBy,
		SortDesc:     q.sortDesc(),
		Page:         q.page(),
	}
	list, total, err := h.incomes.GetAll(c.Request.Context(), middleware.GetCurrentUserID(c), filter)
	if err != nil {
		ServiceError(c, err, "查询收入记录失败")
		return
	}
	Success(c, PageResponse{
		Total:    total,
		Page:     filter.Page.Page,
		PageSize: filter.Page.PageSize,
		List:     list,
	})
}

// Get 获取收入记录详情
// @Summary 获取收入记录详情
// @Tags 收入记录
// @Produce json
// @Security BearerAuth
// @Param id path string true "收入记录ID"
// @Success 200 {object} Response{data=models.Income} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [get]
func (h *IncomeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	income, err := h.incomes.Get(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		ServiceError(c, err, "查询收入记录失败")
		return
	}
	Success(c, income)
}

// Update 更新收入记录
// @Summary 更新收入记录
// @Tags 收入记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "收入记录ID"
// @Param request body UpdateIncomeRequest true "更新内容"
// @Success 200 {object} Response{data=models.Income} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [put]
func (h *IncomeHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	date, err := optionalTime(req.Date)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	income, err := h.incomes.Update(c.Request.Context(), middleware.GetCurrentUserID(c), id, service.IncomeUpdate{
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		Date:         date,
		Source:       req.Source,
	})
	if err != nil {
		ServiceError(c, err, "更新收入记录失败")
		return
	}
	SuccessWithMessage(c, "更新成功", income)
}

// Delete 删除收入记录
// @Summary 删除收入记录
// @Tags 收入记录
// @Security BearerAuth
// @Param id path string true "收入记录ID"
// @Success 204 "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/incomes/{id} [delete]
func (h *IncomeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.incomes.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		ServiceError(c, err, "删除收入记录失败")
		return
	}
	NoContent(c)
}
