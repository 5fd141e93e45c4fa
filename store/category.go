package store

import (
	"context"

	"mybudget/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type categoryStore struct {
	db *gorm.DB
}

// NewCategoryStore 创建类别持久化实现
func NewCategoryStore(db *gorm.DB) CategoryStore {
	return &categoryStore{db: db}
}

func (s *categoryStore) Create(ctx context.Context, c *models.Category) error {
	return translateError(s.db.WithContext(ctx).Create(c).Error)
}

func (s *categoryStore) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

func (s *categoryStore) FindByName(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error) {
	var c models.Category
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&c).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

func (s *categoryStore) List(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	var list []models.Category
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC, id ASC").
		Find(&list).Error
	return list, translateError(err)
}

func (s *categoryStore) Rename(ctx context.Context, c *models.Category, name string) error {
	err := s.db.WithContext(ctx).
		Model(c).
		Where("user_id = ?", c.UserID).
		Update("name", name).Error
	if err != nil {
		return translateError(err)
	}
	c.Name = name
	return nil
}

func (s *categoryStore) Delete(ctx context.Context, c *models.Category) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ?", c.UserID).
		Delete(c)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *categoryStore) CountExpenses(ctx context.Context, userID, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Count(&n).Error
	return n, translateError(err)
}
