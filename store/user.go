package store

import (
	"context"

	"mybudget/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userStore struct {
	db *gorm.DB
}

// NewUserStore 创建用户持久化实现
func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{db: db}
}

func (s *userStore) Create(ctx context.Context, u *models.User) error {
	return translateError(s.db.WithContext(ctx).Create(u).Error)
}

func (s *userStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

// FindByLogin 支持用户名或邮箱登录
func (s *userStore) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&u).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

func (s *userStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username = ?", username)
}

func (s *userStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "email = ?", email)
}

func (s *userStore) UpdatePassword(ctx context.Context, u *models.User, hash string) error {
	if err := s.db.WithContext(ctx).Model(u).Update("password", hash).Error; err != nil {
		return translateError(err)
	}
	u.Password = hash
	return nil
}

func (s *userStore) exists(ctx context.Context, cond string, arg interface{}) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where(cond, arg).Count(&n).Error
	if err != nil {
		return false, translateError(err)
	}
	return n > 0, nil
}
