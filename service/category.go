package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"mybudget/models"
	"mybudget/store"

	"github.com/google/uuid"
)

const maxCategoryNameLength = 100

// CategoryService 类别服务
// 名称只去除首尾空白后比较，区分大小写（"Food" 与 "food" 是两个类别）
type CategoryService struct {
	categories store.CategoryStore
}

// NewCategoryService 创建类别服务
func NewCategoryService(categories store.CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationError("类别名称不能为空")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return "", validationError("类别名称不能超过%d个字符", maxCategoryNameLength)
	}
	return name, nil
}

// Add 新建类别，同一用户下名称重复返回冲突
func (s *CategoryService) Add(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	// 先查一次给出友好提示，唯一索引兜底并发插入
	_, err = s.categories.FindByName(ctx, userID, name)
	if err == nil {
		return nil, conflictError("类别名称 %q 已存在", name)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, storeError(err, "类别", "查询类别")
	}

	category := &models.Category{UserID: userID, Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflictError("类别名称 %q 已存在", name)
		}
		return nil, storeError(err, "类别", "创建类别")
	}
	return category, nil
}

// Get 获取当前用户的类别
func (s *CategoryService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, userID, id)
	if err != nil {
		return nil, storeError(err, "类别", "查询类别")
	}
	return category, nil
}

// GetAll 当前用户全部类别，按名称排序
func (s *CategoryService) GetAll(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	list, err := s.categories.List(ctx, userID)
	if err != nil {
		return nil, storeError(err, "类别", "查询类别列表")
	}
	if list == nil {
		list = []models.Category{}
	}
	return list, nil
}

// Update 重命名类别
func (s *CategoryService) Update(ctx context.Context, userID, id uuid.UUID, newName string) (*models.Category, error) {
	category, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	name, err := normalizeCategoryName(newName)
	if err != nil {
		return nil, err
	}
	if name == category.Name {
		return category, nil
	}

	other, err := s.categories.FindByName(ctx, userID, name)
	switch {
	case err == nil && other.ID != category.ID:
		return nil, conflictError("类别名称 %q 已存在", name)
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, storeError(err, "类别", "查询类别")
	}

	if err := s.categories.Rename(ctx, category, name); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflictError("类别名称 %q 已存在", name)
		}
		return nil, storeError(err, "类别", "更新类别")
	}
	return category, nil
}

// Delete 删除类别；仍被消费记录引用时拒绝删除
func (s *CategoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	category, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	n, err := s.categories.CountExpenses(ctx, userID, id)
	if err != nil {
		return storeError(err, "类别", "统计类别引用")
	}
	if n > 0 {
		return ErrCategoryInUse
	}

	if err := s.categories.Delete(ctx, category); err != nil {
		if errors.Is(err, store.ErrForeignKey) {
			return ErrCategoryInUse
		}
		return storeError(err, "类别", "删除类别")
	}
	return nil
}

// findByName 精确匹配名称，未找到时返回 store.ErrNotFound
func (s *CategoryService) findByName(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error) {
	return s.categories.FindByName(ctx, userID, strings.TrimSpace(name))
}

// ResolveOrCreate 按名称查找类别，不存在则新建
// 并发请求同时新建同名类别时，后写入的一方会得到冲突，此时重新读取已存在的类别
func (s *CategoryService) ResolveOrCreate(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error) {
	category, _, err := s.resolveOrCreate(ctx, userID, name)
	return category, err
}

// resolveOrCreate 同 ResolveOrCreate，created 表示类别由本次调用新建
func (s *CategoryService) resolveOrCreate(ctx context.Context, userID uuid.UUID, name string) (category *models.Category, created bool, err error) {
	name, err = normalizeCategoryName(name)
	if err != nil {
		return nil, false, err
	}

	category, err = s.categories.FindByName(ctx, userID, name)
	if err == nil {
		return category, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, storeError(err, "类别", "查询类别")
	}

	category, err = s.Add(ctx, userID, name)
	if errors.Is(err, ErrConflict) {
		category, err = s.categories.FindByName(ctx, userID, name)
		if err != nil {
			return nil, false, storeError(err, "类别", "查询类别")
		}
		return category, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return category, true, nil
}

// discard 删除刚新建但最终没有被引用的类别；已被其他记录引用时保留
func (s *CategoryService) discard(ctx context.Context, category *models.Category) {
	if err := s.categories.Delete(ctx, category); err != nil && !errors.Is(err, store.ErrForeignKey) {
		log.Printf("清理未使用的类别失败: %v", err)
	}
}
