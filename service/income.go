package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"mybudget/models"
	"mybudget/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxSourceLength = 100

// IncomeInput 新建收入记录参数
type IncomeInput struct {
	Amount       decimal.Decimal
	CurrencyCode string
	Date         time.Time
	Source       string
}

// IncomeUpdate 部分更新，nil 字段保持不变
type IncomeUpdate struct {
	Amount       *decimal.Decimal
	CurrencyCode *string
	Date         *time.Time
	Source       *string
}

// IncomeService 收入记录服务
type IncomeService struct {
	incomes store.IncomeStore
}

// NewIncomeService 创建收入记录服务
func NewIncomeService(incomes store.IncomeStore) *IncomeService {
	return &IncomeService{incomes: incomes}
}

func normalizeSource(source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", validationError("收入来源不能为空")
	}
	if utf8.RuneCountInString(source) > maxSourceLength {
		return "", validationError("收入来源不能超过%d个字符", maxSourceLength)
	}
	return source, nil
}

// Add 新建收入记录
func (s *IncomeService) Add(ctx context.Context, userID uuid.UUID, in IncomeInput) (*models.Income, error) {
	if !in.Amount.IsPositive() {
		return nil, validationError("金额必须大于0")
	}
	if strings.TrimSpace(in.CurrencyCode) == "" {
		return nil, validationError("币种不能为空")
	}
	source, err := normalizeSource(in.Source)
	if err != nil {
		return nil, err
	}
	money, err := models.NewMoney(in.Amount, in.CurrencyCode)
	if err != nil {
		return nil, moneyError(err)
	}

	income := &models.Income{
		UserID: userID,
		Date:   recordDate(in.Date),
		Source: source,
	}
	income.SetMoney(money)

	if err := s.incomes.Create(ctx, income); err != nil {
		return nil, storeError(err, "收入记录", "创建收入记录")
	}
	return income, nil
}

// Get 获取当前用户的收入记录
func (s *IncomeService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Income, error) {
	income, err := s.incomes.FindByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err, "收入记录", "查询收入记录")
	}
	return income, nil
}

// GetAll 条件查询
func (s *IncomeService) GetAll(ctx context.Context, userID uuid.UUID, filter models.IncomeFilter) ([]models.Income, int64, error) {
	list, total, err := s.incomes.List(ctx, userID, filter.Normalize())
	if err != nil {
		return nil, 0, storeError(err, "收入记录", "查询收入记录列表")
	}
	return list, total, nil
}

// Update 部分更新；任何校验失败都不会写库
func (s *IncomeService) Update(ctx context.Context, userID, id uuid.UUID, in IncomeUpdate) (*models.Income, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	income := *current

	if in.Amount != nil || in.CurrencyCode != nil {
		money, err := mergeMoney(current.Money(), in.Amount, in.CurrencyCode)
		if err != nil {
			return nil, err
		}
		income.SetMoney(money)
	}
	if in.Source != nil {
		source, err := normalizeSource(*in.Source)
		if err != nil {
			return nil, err
		}
		income.Source = source
	}
	if in.Date != nil {
		income.Date = recordDate(*in.Date)
	}

	if err := s.incomes.Update(ctx, &income); err != nil {
		return nil, storeError(err, "收入记录", "更新收入记录")
	}
	return &income, nil
}

// Delete 删除当前用户的收入记录
func (s *IncomeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	income, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return storeError(s.incomes.Delete(ctx, income), "收入记录", "删除收入记录")
}
