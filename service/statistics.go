package service

import (
	"context"
	"sort"

	"mybudget/models"
	"mybudget/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyBalance 单一币种的收支结余
type CurrencyBalance struct {
	CurrencyCode string          `json:"currency_code" example:"PLN"`
	Income       decimal.Decimal `json:"income" example:"5000.00"`
	Expense      decimal.Decimal `json:"expense" example:"123.45"`
	Balance      decimal.Decimal `json:"balance" example:"4876.55"`
}

// Summary 收支汇总；不同币种分别统计，不做换算
type Summary struct {
	Expenses []store.CurrencyTotal `json:"expenses"`
	Incomes  []store.CurrencyTotal `json:"incomes"`
	Balances []CurrencyBalance     `json:"balances"`
}

// StatisticsService 统计服务
type StatisticsService struct {
	expenses store.ExpenseStore
	incomes  store.IncomeStore
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(expenses store.ExpenseStore, incomes store.IncomeStore) *StatisticsService {
	return &StatisticsService{expenses: expenses, incomes: incomes}
}

func checkRange(r models.DateRange) error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return validationError("开始时间不能晚于结束时间")
	}
	return nil
}

// Summary 时间范围内按币种汇总收入与支出
func (s *StatisticsService) Summary(ctx context.Context, userID uuid.UUID, r models.DateRange) (*Summary, error) {
	if err := checkRange(r); err != nil {
		return nil, err
	}

	expenses, err := s.expenses.SumByCurrency(ctx, userID, r)
	if err != nil {
		return nil, storeError(err, "消费记录", "统计消费")
	}
	incomes, err := s.incomes.SumByCurrency(ctx, userID, r)
	if err != nil {
		return nil, storeError(err, "收入记录", "统计收入")
	}

	return &Summary{
		Expenses: expenses,
		Incomes:  incomes,
		Balances: balances(incomes, expenses),
	}, nil
}

// CategoryTotals 时间范围内各类别支出
func (s *StatisticsService) CategoryTotals(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]store.CategoryTotal, error) {
	if err := checkRange(r); err != nil {
		return nil, err
	}
	totals, err := s.expenses.SumByCategory(ctx, userID, r)
	if err != nil {
		return nil, storeError(err, "消费记录", "统计类别支出")
	}
	return totals, nil
}

func balances(incomes, expenses []store.CurrencyTotal) []CurrencyBalance {
	byCode := make(map[string]*CurrencyBalance)
	get := func(code string) *CurrencyBalance {
		b, ok := byCode[code]
		if !ok {
			b = &CurrencyBalance{CurrencyCode: code}
			byCode[code] = b
		}
		return b
	}
	for _, t := range incomes {
		get(t.CurrencyCode).Income = t.Total
	}
	for _, t := range expenses {
		get(t.CurrencyCode).Expense = t.Total
	}

	result := make([]CurrencyBalance, 0, len(byCode))
	for _, b := range byCode {
		b.Balance = b.Income.Sub(b.Expense)
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CurrencyCode < result[j].CurrencyCode
	})
	return result
}
