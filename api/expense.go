package api

import (
	"strings"
	"time"

	"mybudget/middleware"
	"mybudget/models"
	"mybudget/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	expenses *service.ExpenseService
	accounts *service.AccountService
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler(expenses *service.ExpenseService, accounts *service.AccountService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, accounts: accounts}
}

// CreateExpenseRequest 创建消费记录请求
type CreateExpenseRequest struct {
	CategoryName string          `json:"category_name" binding:"required" example:"餐饮"`
	Amount       decimal.Decimal `json:"amount" swaggertype:"number" example:"99.99"`
	CurrencyCode string          `json:"currency_code" example:"PLN"` // 为空时使用账号默认币种
	Date         string          `json:"date" example:"2024-01-15"`   // 为空时取当前时间
	Note         *string         `json:"note" example:"午餐"`
}

// UpdateExpenseRequest 更新消费记录请求，未传的字段保持不变
type UpdateExpenseRequest struct {
	CategoryName *string          `json:"category_name" example:"餐饮"`
	Amount       *decimal.Decimal `json:"amount" swaggertype:"number" example:"99.99"`
	CurrencyCode *string          `json:"currency_code" example:"PLN"`
	Date         *string          `json:"date" example:"2024-01-15"`
	Note         *string          `json:"note" example:"午餐"`
}

// ExpenseListQuery 消费记录列表查询参数
type ExpenseListQuery struct {
	ListQuery
	CategoryName string `form:"category_name" example:"餐饮"`
}

// ExpenseResponse 消费记录
type ExpenseResponse struct {
	ID           uuid.UUID       `json:"id"`
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Amount       decimal.Decimal `json:"amount" swaggertype:"string" example:"99.99"`
	CurrencyCode string          `json:"currency_code" example:"PLN"`
	Date         time.Time       `json:"date"`
	Note         *string         `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func newExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:           e.ID,
		CategoryID:   e.CategoryID,
		CategoryName: e.Category.Name,
		Amount:       e.Amount,
		CurrencyCode: e.CurrencyCode,
		Date:         e.Date,
		Note:         e.Note,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 类别按名称匹配，不存在时自动创建；未指定币种时使用账号默认币种
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "消费记录信息"
// @Success 201 {object} Response{data=ExpenseResponse} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateExpenseRequest
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

	expense, err := h.expenses.Add(c.Request.Context(), userID, service.ExpenseInput{
		CategoryName: req.CategoryName,
		Amount:       req.Amount,
		CurrencyCode: currency,
		Date:         date,
		Note:         req.Note,
	})
	if err != nil {
		ServiceError(c, err, "创建消费记录失败")
		return
	}
	Created(c, "/api/v1/expenses/"+expense.ID.String(), newExpenseResponse(expense))
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 条件之间为 AND；类别名称不存在时返回空列表
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量，最大 50" default(20)
// @Param category_name query string false "类别名称（精确匹配）"
// @Param currency_code query string false "币种"
// @Param amount query number false "金额（精确匹配）"
// @Param min_amount query number false "最小金额"
// @Param max_amount query number false "最大金额"
// @Param from_date query string false "开始时间 (2024-01-01 或 RFC3339)"
// @Param to_date query string false "结束时间 (2024-12-31 或 RFC3339)，仅日期时包含当天"
// @Param sort_by query string false "排序字段 date|amount" default(date)
// @Param sort_desc query bool false "是否倒序" default(true)
// @Success 200 {object} Response{data=PageResponse{list=[]ExpenseResponse}} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	var q ExpenseListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	amount, dates, err := q.common()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	filter := models.ExpenseFilter{
		CategoryName: q.CategoryName,
		CurrencyCode: q.CurrencyCode,
		Amount:       amount,
		Date:         dates,
		SortBy:       q.SortBy,
		SortDesc:     q.sortDesc(),
		Page:         q.page(),
	}
	list, total, err := h.expenses.GetAll(c.Request.Context(), middleware.GetCurrentUserID(c), filter)
	if err != nil {
		ServiceError(c, err, "查询消费记录失败")
		return
	}

	items := make([]ExpenseResponse, 0, len(list))
	for i := range list {
		items = append(items, newExpenseResponse(&list[i]))
	}
	Success(c, PageResponse{
		Total:    total,
		Page:     filter.Page.Page,
		PageSize: filter.Page.PageSize,
		List:     items,
	})
}

// Get 获取消费记录详情
// @Summary 获取消费记录详情
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path string true "消费记录ID"
// @Success 200 {object} Response{data=ExpenseResponse} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	expense, err := h.expenses.Get(c.Request.Context(), middleware.GetCurrentUserID(c), id)
	if err != nil {
		ServiceError(c, err, "查询消费记录失败")
		return
	}
	Success(c, newExpenseResponse(expense))
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 只更新请求中出现的字段
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "消费记录ID"
// @Param request body UpdateExpenseRequest true "更新内容"
// @Success 200 {object} Response{data=ExpenseResponse} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	date, err := optionalTime(req.Date)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	expense, err := h.expenses.Update(c.Request.Context(), middleware.GetCurrentUserID(c), id, service.ExpenseUpdate{
		CategoryName: req.CategoryName,
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		Date:         date,
		Note:         req.Note,
	})
	if err != nil {
		ServiceError(c, err, "更新消费记录失败")
		return
	}
	SuccessWithMessage(c, "更新成功", newExpenseResponse(expense))
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Tags 消费记录
// @Security BearerAuth
// @Param id path string true "消费记录ID"
// @Success 204 "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.expenses.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		ServiceError(c, err, "删除消费记录失败")
		return
	}
	NoContent(c)
}
