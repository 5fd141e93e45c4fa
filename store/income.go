package store

import (
	"context"

	"mybudget/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type incomeStore struct {
	db *gorm.DB
}

// NewIncomeStore 创建收入记录持久化实现
func NewIncomeStore(db *gorm.DB) IncomeStore {
	return &incomeStore{db: db}
}

func (s *incomeStore) Create(ctx context.Context, i *models.Income) error {
	return translateError(s.db.WithContext(ctx).Create(i).Error)
}

func (s *incomeStore) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Income, error) {
	var i models.Income
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&i).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &i, nil
}

// List 按条件查询一页数据，同时返回满足条件的总数；filter 需已 Normalize
func (s *incomeStore) List(ctx context.Context, userID uuid.UUID, filter models.IncomeFilter) ([]models.Income, int64, error) {
	query := incomeFilterScope(userID, filter)(s.db.WithContext(ctx).Model(&models.Income{})).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	list := make([]models.Income, 0)
	if total == 0 {
		return list, 0, nil
	}
	err := pageScope(filter.Page)(orderScope("incomes", filter.SortBy, filter.SortDesc)(query)).
		Find(&list).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return list, total, nil
}

// Update 写回可修改字段（金额、币种、日期、来源）
func (s *incomeStore) Update(ctx context.Context, i *models.Income) error {
	err := s.db.WithContext(ctx).
		Model(i).
		Where("user_id = ?", i.UserID).
		Updates(map[string]interface{}{
			"amount":        i.Amount,
			"currency_code": i.CurrencyCode,
			"date":          i.Date,
			"source":        i.Source,
		}).Error
	return translateError(err)
}

func (s *incomeStore) Delete(ctx context.Context, i *models.Income) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ?", i.UserID).
		Delete(i)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SumByCurrency 按币种汇总收入
func (s *incomeStore) SumByCurrency(ctx context.Context, userID uuid.UUID, r models.DateRange) ([]CurrencyTotal, error) {
	totals := make([]CurrencyTotal, 0)
	query := s.db.WithContext(ctx).
		Model(&models.Income{}).
		Select("incomes.currency_code AS currency_code, COALESCE(SUM(incomes.amount), 0) AS total, COUNT(*) AS count")
	query = dateRangeScope("incomes.date", r)(ownedBy("incomes", userID)(query))
	err := query.Group("incomes.currency_code").
		Order("incomes.currency_code ASC").
		Scan(&totals).Error
	return totals, translateError(err)
}
