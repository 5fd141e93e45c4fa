// Package store 持久化层：按用户隔离的类别、消费、收入、用户读写
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mybudget/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在（或不属于当前用户）
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("duplicate record")
	// ErrForeignKey 违反外键约束
	ErrForeignKey = errors.New("foreign key violation")
)

// CategoryStore 类别持久化
type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Category, error)
	FindByName(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Category, error)
	Rename(ctx context.Context, c *models.Category, name string) error
	Delete(ctx context.Context, c *models.Category) error
	CountExpenses(ctx context.Context, userID, categoryID uuid.UUID) (int64, error)
}

// ExpenseStore 消费记录持久化
type ExpenseStore interface {
	Create(ctx context.Context, e *models.Expense) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]models.Expense, int64, error)
	Update(ctx context.Context, e *models.Expense) error
	Delete(ctx context.Context, e *models.Expense) error
	ListInRange(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]ExpenseRow, error)
	SumByCurrency(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]CurrencyTotal, error)
	SumByCategory(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]CategoryTotal, error)
}

// IncomeStore 收入记录持久化
type IncomeStore interface {
	Create(ctx context.Context, i *models.Income) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Income, error)
	List(ctx context.Context, userID uuid.UUID, filter models.IncomeFilter) ([]models.Income, int64, error)
	Update(ctx context.Context, i *models.Income) error
	Delete(ctx context.Context, i *models.Income) error
	SumByCurrency(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]CurrencyTotal, error)
}

// UserStore 用户持久化
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, u *models.User, hash string) error
}

// CurrencyTotal 按币种汇总
type CurrencyTotal struct {
	CurrencyCode string          `json:"currency_code"`
	Total        decimal.Decimal `json:"total"`
	Count        int64           `json:"count"`
}

// CategoryTotal 按类别+币种汇总
type CategoryTotal struct {
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	CurrencyCode string          `json:"currency_code"`
	Total        decimal.Decimal `json:"total"`
	Count        int64           `json:"count"`
}

// ExpenseRow 导出用的消费记录（带类别名称）
type ExpenseRow struct {
	models.Expense
	CategoryName string `json:"category_name"`
}

// Stores 所有持久化实现的集合，由 main 统一构建后注入服务
type Stores struct {
	Categories CategoryStore
	Expenses   ExpenseStore
	Incomes    IncomeStore
	Users      UserStore
}

// New 基于同一个 gorm 连接构建全部持久化实现
func New(db *gorm.DB) *Stores {
	return &Stores{
		Categories: NewCategoryStore(db),
		Expenses:   NewExpenseStore(db),
		Incomes:    NewIncomeStore(db),
		Users:      NewUserStore(db),
	}
}

// translateError 把驱动/gorm 错误翻译为本包的错误类型
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueConstraintError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case isForeignKeyError(err):
		return fmt.Errorf("%w: %v", ErrForeignKey, err)
	default:
		return err
	}
}

// 未开启 TranslateError 的连接或驱动版本差异时的兜底判断
func isUniqueConstraintError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate entry") ||
		strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "unique constraint")
}

func isForeignKeyError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "foreign key constraint") ||
		strings.Contains(s, "sqlstate 23503")
}
