// Package service 业务服务：校验、按用户隔离的读写与错误分类
package service

import (
	"mybudget/config"
	"mybudget/store"
)

// Services 全部业务服务，由 main 构建后交给路由
type Services struct {
	Categories *CategoryService
	Expenses   *ExpenseService
	Incomes    *IncomeService
	Accounts   *AccountService
	Statistics *StatisticsService
	Exports    *ExportService
}

// New 基于持久化实现与配置构建全部服务
func New(stores *store.Stores, cfg *config.Config) *Services {
	categories := NewCategoryService(stores.Categories)
	return &Services{
		Categories: categories,
		Expenses:   NewExpenseService(stores.Expenses, categories),
		Incomes:    NewIncomeService(stores.Incomes),
		Accounts:   NewAccountService(stores.Users, cfg.Budget.DefaultCurrency),
		Statistics: NewStatisticsService(stores.Expenses, stores.Incomes),
		Exports:    NewExportService(stores.Expenses, stores.Users, NewEmailService(&cfg.Email)),
	}
}
