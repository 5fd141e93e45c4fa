package api

import (
	"mybudget/middleware"
	"mybudget/service"

	"github.com/gin-gonic/gin"
)

// StatisticsHandler 统计处理器
type StatisticsHandler struct {
	statistics *service.StatisticsService
}

// NewStatisticsHandler 创建统计处理器
func NewStatisticsHandler(statistics *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statistics: statistics}
}

// Summary 收支汇总
// @Summary 获取收支汇总
// @Description 按币种统计当前用户的支出、收入与结余。不传 from_date/to_date 则统计全部时间。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param from_date query string false "开始时间 (YYYY-MM-DD)，例如 2024-01-01"
// @Param to_date query string false "结束时间 (YYYY-MM-DD)，例如 2024-12-31"
// @Success 200 {object} Response{data=service.Summary} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/summary [get]
func (h *StatisticsHandler) Summary(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	r, err := q.dateRange()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	summary, err := h.statistics.Summary(c.Request.Context(), middleware.GetCurrentUserID(c), r)
	if err != nil {
		ServiceError(c, err, "统计失败")
		return
	}
	Success(c, summary)
}

// Categories 各类别支出
// @Summary 获取各类别支出
// @Description 按类别和币种统计支出，金额大的在前
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param from_date query string false "开始时间 (YYYY-MM-DD)"
// @Param to_date query string false "结束时间 (YYYY-MM-DD)"
// @Success 200 {object} Response{data=[]store.CategoryTotal} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/statistics/categories [get]
func (h *StatisticsHandler) Categories(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	r, err := q.dateRange()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	totals, err := h.statistics.CategoryTotals(c.Request.Context(), middleware.GetCurrentUserID(c), r)
	if err != nil {
		ServiceError(c, err, "统计失败")
		return
	}
	Success(c, totals)
}
