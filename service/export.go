package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"mybudget/models"
	"mybudget/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheetName = "消费记录"
	exportTimeFmt   = "2006-01-02 15:04:05"
)

var exportHeaders = []string{"ID", "日期", "类别", "金额", "币种", "备注", "创建时间"}

// Mailer 发送导出邮件
type Mailer interface {
	Enabled() bool
	SendExportEmail(to, username, filename string, attachment []byte) error
}

// ExportService 消费记录导出
type ExportService struct {
	expenses store.ExpenseStore
	users    store.UserStore
	mailer   Mailer
}

// NewExportService 创建导出服务，mailer 可为 nil（不支持邮件导出）
func NewExportService(expenses store.ExpenseStore, users store.UserStore, mailer Mailer) *ExportService {
	return &ExportService{expenses: expenses, users: users, mailer: mailer}
}

// Expenses 时间范围内全部消费记录，按日期倒序
func (s *ExportService) Expenses(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]store.ExpenseRow, error) {
	if err := checkRange(r); err != nil {
		return nil, err
	}
	rows, err := s.expenses.ListInRange(ctx, userID, r)
	if err != nil {
		return nil, storeError(err, "消费记录", "查询消费记录")
	}
	return rows, nil
}

// EmailExpenses 生成 Excel 并发送到用户邮箱
func (s *ExportService) EmailExpenses(ctx context.Context, userID uuid.UUID, r models.DateRange, filename string) error {
	if s.mailer == nil || !s.mailer.Enabled() {
		return validationError("邮件服务未启用")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return storeError(err, "用户", "查询用户")
	}
	if user.Email == "" {
		return validationError("当前账号未设置邮箱")
	}

	rows, err := s.Expenses(ctx, userID, r)
	if err != nil {
		return err
	}

	f, err := BuildExpenseWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("生成 Excel 失败: %w", err)
	}
	return s.mailer.SendExportEmail(user.Email, user.Username, filename, buf.Bytes())
}

// WriteExpenseCSV 写出 CSV，带 BOM 以便 Excel 正确识别中文
func WriteExpenseCSV(w io.Writer, rows []store.ExpenseRow) error {
	if _, err := io.WriteString(w, "\xEF\xBB\xBF"); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(exportRecord(row)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func exportRecord(row store.ExpenseRow) []string {
	note := ""
	if row.Note != nil {
		note = *row.Note
	}
	return []string{
		row.ID.String(),
		row.Date.Format(exportTimeFmt),
		row.CategoryName,
		row.Amount.StringFixed(2),
		row.CurrencyCode,
		note,
		row.CreatedAt.Format(exportTimeFmt),
	}
}

// BuildExpenseWorkbook 生成 Excel 工作簿，末尾按币种追加合计行
// 调用方负责 Close
func BuildExpenseWorkbook(rows []store.ExpenseRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		f.Close()
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})

	widths := []float64{38, 20, 15, 12, 8, 30, 20}
	for i, w := range widths {
		col := string(rune('A' + i))
		f.SetColWidth(exportSheetName, col, col, w)
	}

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(exportSheetName, cell, header)
		f.SetCellStyle(exportSheetName, cell, cell, headerStyle)
	}

	totals := make(map[string]decimal.Decimal)
	for i, row := range rows {
		line := i + 2
		record := exportRecord(row)
		for j, v := range record {
			cell := fmt.Sprintf("%c%d", 'A'+j, line)
			if j == 3 {
				f.SetCellValue(exportSheetName, cell, row.Amount.InexactFloat64())
				continue
			}
			f.SetCellValue(exportSheetName, cell, v)
		}
		f.SetCellStyle(exportSheetName, fmt.Sprintf("A%d", line), fmt.Sprintf("G%d", line), dataStyle)
		totals[row.CurrencyCode] = totals[row.CurrencyCode].Add(row.Amount)
	}

	codes := make([]string, 0, len(totals))
	for code := range totals {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	line := len(rows) + 2
	for _, code := range codes {
		f.SetCellValue(exportSheetName, fmt.Sprintf("C%d", line), "合计")
		f.SetCellValue(exportSheetName, fmt.Sprintf("D%d", line), totals[code].InexactFloat64())
		f.SetCellValue(exportSheetName, fmt.Sprintf("E%d", line), code)
		f.SetCellStyle(exportSheetName, fmt.Sprintf("A%d", line), fmt.Sprintf("G%d", line), summaryStyle)
		line++
	}

	return f, nil
}
