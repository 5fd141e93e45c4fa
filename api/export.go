package api

import (
	"bytes"
	"fmt"
	"net/http"

	"mybudget/middleware"
	"mybudget/models"
	"mybudget/service"
	"mybudget/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler 创建导出处理器
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// exportRange 解析时间范围，失败时已写出响应
func exportRange(c *gin.Context) (RangeQuery, models.DateRange, bool) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return q, models.DateRange{}, false
	}
	r, err := q.dateRange()
	if err != nil {
		BadRequest(c, err.Error())
		return q, r, false
	}
	return q, r, true
}

// exportFilename expenses_<from>_<to>.<ext>，未指定的一端用 all
func exportFilename(q RangeQuery, ext string) string {
	from, to := q.FromDate, q.ToDate
	if from == "" {
		from = "all"
	}
	if to == "" {
		to = "all"
	}
	return fmt.Sprintf("expenses_%s_%s.%s", from, to, ext)
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录
// @Description 根据时间范围导出消费记录为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param from_date query string false "开始时间 (2024-01-01)"
// @Param to_date query string false "结束时间 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	q, r, ok := exportRange(c)
	if !ok {
		return
	}

	rows, err := h.exports.Expenses(c.Request.Context(), middleware.GetCurrentUserID(c), r)
	if err != nil {
		ServiceError(c, err, "查询数据失败")
		return
	}

	buf := new(bytes.Buffer)
	if err := service.WriteExpenseCSV(buf, rows); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(q, "csv")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出消费记录为 Excel
// @Summary 导出消费记录为 Excel
// @Description 根据时间范围导出 .xlsx 文件，末尾附按币种合计
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param from_date query string false "开始时间 (2024-01-01)"
// @Param to_date query string false "结束时间 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	q, r, ok := exportRange(c)
	if !ok {
		return
	}

	rows, err := h.exports.Expenses(c.Request.Context(), middleware.GetCurrentUserID(c), r)
	if err != nil {
		ServiceError(c, err, "查询数据失败")
		return
	}

	f, err := service.BuildExpenseWorkbook(rows)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(q, "xlsx")))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
	}
}

// ExportJSONResponse JSON 导出结果
type ExportJSONResponse struct {
	FromDate   string                     `json:"from_date"`
	ToDate     string                     `json:"to_date"`
	TotalCount int                        `json:"total_count"`
	Totals     map[string]decimal.Decimal `json:"totals"` // 按币种合计
	Expenses   []store.ExpenseRow         `json:"expenses"`
}

// ExportJSON 导出消费记录为 JSON
// @Summary 导出消费记录为 JSON
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param from_date query string false "开始时间 (2024-01-01)"
// @Param to_date query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=ExportJSONResponse} "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	q, r, ok := exportRange(c)
	if !ok {
		return
	}

	rows, err := h.exports.Expenses(c.Request.Context(), middleware.GetCurrentUserID(c), r)
	if err != nil {
		ServiceError(c, err, "查询数据失败")
		return
	}

	totals := make(map[string]decimal.Decimal)
	for _, row := range rows {
		totals[row.CurrencyCode] = totals[row.CurrencyCode].Add(row.Amount)
	}
	Success(c, ExportJSONResponse{
		FromDate:   q.FromDate,
		ToDate:     q.ToDate,
		TotalCount: len(rows),
		Totals:     totals,
		Expenses:   rows,
	})
}

// ExportEmail 将 Excel 导出发送到账号邮箱
// @Summary 邮件导出消费记录
// @Description 生成 Excel 并作为附件发送到当前账号的邮箱
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param from_date query string false "开始时间 (2024-01-01)"
// @Param to_date query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "邮件服务未启用或参数错误"
// @Router /api/v1/export/email [post]
func (h *ExportHandler) ExportEmail(c *gin.Context) {
	q, r, ok := exportRange(c)
	if !ok {
		return
	}

	err := h.exports.EmailExpenses(c.Request.Context(), middleware.GetCurrentUserID(c), r, exportFilename(q, "xlsx"))
	if err != nil {
		ServiceError(c, err, "发送邮件失败")
		return
	}
	SuccessWithMessage(c, "导出文件已发送到邮箱", nil)
}
