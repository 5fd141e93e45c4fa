package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"mybudget/models"
	"mybudget/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseInput 新建消费记录参数
type ExpenseInput struct {
	CategoryName string
	Amount       decimal.Decimal
	CurrencyCode string
	Date         time.Time
	Note         *string
}

// ExpenseUpdate 部分更新，nil 字段保持不变
type ExpenseUpdate struct {
	CategoryName *string
	Amount       *decimal.Decimal
	CurrencyCode *string
	Date         *time.Time
	Note         *string
}

// ExpenseService 消费记录服务
type ExpenseService struct {
	expenses   store.ExpenseStore
	categories *CategoryService
}

// NewExpenseService 创建消费记录服务
func NewExpenseService(expenses store.ExpenseStore, categories *CategoryService) *ExpenseService {
	return &ExpenseService{expenses: expenses, categories: categories}
}

// Add 新建消费记录，类别不存在时自动创建
func (s *ExpenseService) Add(ctx context.Context, userID uuid.UUID, in ExpenseInput) (*models.Expense, error) {
	if !in.Amount.IsPositive() {
		return nil, validationError("金额必须大于0")
	}
	if strings.TrimSpace(in.CurrencyCode) == "" {
		return nil, validationError("币种不能为空")
	}
	if strings.TrimSpace(in.CategoryName) == "" {
		return nil, validationError("类别不能为空")
	}
	money, err := models.NewMoney(in.Amount, in.CurrencyCode)
	if err != nil {
		return nil, moneyError(err)
	}

	// 类别与消费记录分两次写入；记录写入失败时删除本次新建的类别
	category, created, err := s.categories.resolveOrCreate(ctx, userID, in.CategoryName)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		UserID:     userID,
		CategoryID: category.ID,
		Date:       recordDate(in.Date),
		Note:       normalizeNote(in.Note),
	}
	expense.SetMoney(money)

	if err := s.expenses.Create(ctx, expense); err != nil {
		if created {
			s.categories.discard(ctx, category)
		}
		return nil, storeError(err, "消费记录", "创建消费记录")
	}
	expense.Category = *category
	return expense, nil
}

// Get 获取当前用户的消费记录
func (s *ExpenseService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Expense, error) {
	expense, err := s.expenses.FindByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err, "消费记录", "查询消费记录")
	}
	return expense, nil
}

// GetAll 条件查询；按类别名称筛选而该类别不存在时直接返回空结果
func (s *ExpenseService) GetAll(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]models.Expense, int64, error) {
	filter = filter.Normalize()
	filter.CategoryID = nil

	if filter.CategoryName != "" {
		category, err := s.categories.findByName(ctx, userID, filter.CategoryName)
		if errors.Is(err, store.ErrNotFound) {
			return []models.Expense{}, 0, nil
		}
		if err != nil {
			return nil, 0, storeError(err, "类别", "查询类别")
		}
		filter.CategoryID = &category.ID
	}

	list, total, err := s.expenses.List(ctx, userID, filter)
	if err != nil {
		return nil, 0, storeError(err, "消费记录", "查询消费记录列表")
	}
	return list, total, nil
}

// Update 部分更新；任何校验失败都不会写库
func (s *ExpenseService) Update(ctx context.Context, userID, id uuid.UUID, in ExpenseUpdate) (*models.Expense, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	expense := *current

	if in.Amount != nil || in.CurrencyCode != nil {
		money, err := mergeMoney(current.Money(), in.Amount, in.CurrencyCode)
		if err != nil {
			return nil, err
		}
		expense.SetMoney(money)
	}
	if in.CategoryName != nil && strings.TrimSpace(*in.CategoryName) == "" {
		return nil, validationError("类别不能为空")
	}
	if in.Date != nil {
		expense.Date = recordDate(*in.Date)
	}
	if in.Note != nil {
		expense.Note = normalizeNote(in.Note)
	}

	var created bool
	if in.CategoryName != nil {
		var category *models.Category
		category, created, err = s.categories.resolveOrCreate(ctx, userID, *in.CategoryName)
		if err != nil {
			return nil, err
		}
		expense.CategoryID = category.ID
		expense.Category = *category
	}

	if err := s.expenses.Update(ctx, &expense); err != nil {
		if created {
			s.categories.discard(ctx, &expense.Category)
		}
		return nil, storeError(err, "消费记录", "更新消费记录")
	}
	return &expense, nil
}

// Delete 删除当前用户的消费记录
func (s *ExpenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	expense, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return storeError(s.expenses.Delete(ctx, expense), "消费记录", "删除消费记录")
}

// mergeMoney 用新的金额或币种替换对应部分，未提供的部分沿用原值
func mergeMoney(current models.Money, amount *decimal.Decimal, currencyCode *string) (models.Money, error) {
	a := current.Amount()
	code := current.CurrencyCode()
	if amount != nil {
		if !amount.IsPositive() {
			return models.Money{}, validationError("金额必须大于0")
		}
		a = *amount
	}
	if currencyCode != nil {
		if strings.TrimSpace(*currencyCode) == "" {
			return models.Money{}, validationError("币种不能为空")
		}
		code = *currencyCode
	}
	money, err := models.NewMoney(a, code)
	if err != nil {
		return models.Money{}, moneyError(err)
	}
	return money, nil
}

// recordDate 未指定日期时取当前时间，统一存 UTC
func recordDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	n := strings.TrimSpace(*note)
	if n == "" {
		return nil
	}
	return &n
}
