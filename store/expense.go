package store

import (
	"context"

	"mybudget/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type expenseStore struct {
	db *gorm.DB
}

// NewExpenseStore 创建消费记录持久化实现
func NewExpenseStore(db *gorm.DB) ExpenseStore {
	return &expenseStore{db: db}
}

func (s *expenseStore) Create(ctx context.Context, e *models.Expense) error {
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error)
}

func (s *expenseStore) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Expense, error) {
	var e models.Expense
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&e).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &e, nil
}

// List 按条件查询一页数据，同时返回满足条件的总数；filter 需已 Normalize
func (s *expenseStore) List(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]models.Expense, int64, error) {
	query := expenseFilterScope(userID, filter)(s.db.WithContext(ctx).Model(&models.Expense{})).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	list := make([]models.Expense, 0)
	if total == 0 {
		return list, 0, nil
	}
	err := pageScope(filter.Page)(orderScope("expenses", filter.SortBy, filter.SortDesc)(query)).
		Preload("Category").
		Find(&list).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return list, total, nil
}

// Update 写回可修改字段（类别、金额、币种、日期、备注），不级联写 Category
// MySQL 在值未变化时影响行数为 0，因此这里不以 RowsAffected 判断记录是否存在
func (s *expenseStore) Update(ctx context.Context, e *models.Expense) error {
	err := s.db.WithContext(ctx).
		Model(e).
		Omit(clause.Associations).
		Where("user_id = ?", e.UserID).
		Updates(map[string]interface{}{
			"category_id":   e.CategoryID,
			"amount":        e.Amount,
			"currency_code": e.CurrencyCode,
			"date":          e.Date,
			"note":          e.Note,
		}).Error
	return translateError(err)
}

func (s *expenseStore) Delete(ctx context.Context, e *models.Expense) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ?", e.UserID).
		Delete(e)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInRange 导出用：时间范围内全部消费记录，按日期倒序
func (s *expenseStore) ListInRange(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]ExpenseRow, error) {
	rows := make([]ExpenseRow, 0)
	query := s.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("expenses.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = expenses.category_id")
	query = dateRangeScope("expenses.date", r)(ownedBy("expenses", userID)(query))
	err := query.Order("expenses.date DESC, expenses.id DESC").Scan(&rows).Error
	return rows, translateError(err)
}

// SumByCurrency 按币种汇总消费
func (s *expenseStore) SumByCurrency(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]CurrencyTotal, error) {
	totals := make([]CurrencyTotal, 0)
	query := s.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("expenses.currency_code AS currency_code, COALESCE(SUM(expenses.amount), 0) AS total, COUNT(*) AS count")
	query = dateRangeScope("expenses.date", r)(ownedBy("expenses", userID)(query))
	err := query.Group("expenses.currency_code").
		Order("expenses.currency_code ASC").
		Scan(&totals).Error
	return totals, translateError(err)
}

// SumByCategory 按类别和币种汇总消费，金额大的在前
func (s *expenseStore) SumByCategory(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]CategoryTotal, error) {
	totals := make([]CategoryTotal, 0)
	query := s.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("expenses.category_id AS category_id, categories.name AS category_name, " +
			"expenses.currency_code AS currency_code, COALESCE(SUM(expenses.amount), 0) AS total, COUNT(*) AS count").
		Joins("JOIN categories ON categories.id = expenses.category_id")
	query = dateRangeScope("expenses.date", r)(ownedBy("expenses", userID)(query))
	err := query.Group("expenses.category_id, categories.name, expenses.currency_code").
		Order("total DESC, category_name ASC").
		Scan(&totals).Error
	return totals, translateError(err)
}
