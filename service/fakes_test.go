package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mybudget/models"
	"mybudget/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memDB 内存版持久化，供服务层测试使用
type memDB struct {
	mu         sync.Mutex
	categories map[uuid.UUID]models.Category
	expenses   map[uuid.UUID]models.Expense
	incomes    map[uuid.UUID]models.Income
	users      map[uuid.UUID]models.User

	listCalls int
}

func newMemDB() *memDB {
	return &memDB{
		categories: make(map[uuid.UUID]models.Category),
		expenses:   make(map[uuid.UUID]models.Expense),
		incomes:    make(map[uuid.UUID]models.Income),
		users:      make(map[uuid.UUID]models.User),
	}
}

type memCategoryStore struct{ db *memDB }

func (s memCategoryStore) Create(_ context.Context, c *models.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.categories {
		if existing.UserID == c.UserID && existing.Name == c.Name {
			return store.ErrDuplicate
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.db.categories[c.ID] = *c
	return nil
}

func (s memCategoryStore) FindByID(_ context.Context, userID, id uuid.UUID) (*models.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.categories[id]
	if !ok || c.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s memCategoryStore) FindByName(_ context.Context, userID uuid.UUID, name string) (*models.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.categories {
		if c.UserID == userID && c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s memCategoryStore) List(_ context.Context, userID uuid.UUID) ([]models.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var list []models.Category
	for _, c := range s.db.categories {
		if c.UserID == userID {
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (s memCategoryStore) Rename(_ context.Context, c *models.Category, name string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored := s.db.categories[c.ID]
	stored.Name = name
	s.db.categories[c.ID] = stored
	c.Name = name
	return nil
}

func (s memCategoryStore) Delete(_ context.Context, c *models.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	delete(s.db.categories, c.ID)
	return nil
}

func (s memCategoryStore) CountExpenses(_ context.Context, userID, categoryID uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, e := range s.db.expenses {
		if e.UserID == userID && e.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

type memExpenseStore struct{ db *memDB }

func (s memExpenseStore) Create(_ context.Context, e *models.Expense) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	stored := *e
	stored.Category = models.Category{}
	s.db.expenses[e.ID] = stored
	return nil
}

func (s memExpenseStore) FindByID(_ context.Context, userID, id uuid.UUID) (*models.Expense, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	e, ok := s.db.expenses[id]
	if !ok || e.UserID != userID {
		return nil, store.ErrNotFound
	}
	e.Category = s.db.categories[e.CategoryID]
	return &e, nil
}

func (s memExpenseStore) List(_ context.Context, userID uuid.UUID, f models.ExpenseFilter) ([]models.Expense, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.listCalls++

	var matched []models.Expense
	for _, e := range s.db.expenses {
		if e.UserID != userID {
			continue
		}
		if f.CategoryID != nil && e.CategoryID != *f.CategoryID {
			continue
		}
		if f.CurrencyCode != "" && e.CurrencyCode != f.CurrencyCode {
			continue
		}
		if !inAmountRange(e.Amount, f.Amount) || !inDateRange(e.Date, f.Date) {
			continue
		}
		e.Category = s.db.categories[e.CategoryID]
		matched = append(matched, e)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var c int
		if f.SortBy == models.SortByAmount {
			c = a.Amount.Cmp(b.Amount)
		} else {
			c = a.Date.Compare(b.Date)
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		if f.SortDesc {
			return c > 0
		}
		return c < 0
	})
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (s memExpenseStore) Update(_ context.Context, e *models.Expense) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored := *e
	stored.Category = models.Category{}
	s.db.expenses[e.ID] = stored
	return nil
}

func (s memExpenseStore) Delete(_ context.Context, e *models.Expense) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.expenses[e.ID]
	if !ok || stored.UserID != e.UserID {
		return store.ErrNotFound
	}
	delete(s.db.expenses, e.ID)
	return nil
}

func (s memExpenseStore) ListInRange(_ context.Context, userID uuid.UUID, r models.DateRange) ([]store.ExpenseRow, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rows := make([]store.ExpenseRow, 0)
	for _, e := range s.db.expenses {
		if e.UserID == userID && inDateRange(e.Date, r) {
			rows = append(rows, store.ExpenseRow{Expense: e, CategoryName: s.db.categories[e.CategoryID].Name})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	return rows, nil
}

func (s memExpenseStore) SumByCurrency(_ context.Context, userID uuid.UUID, r models.DateRange) ([]store.CurrencyTotal, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	acc := make(map[string]*store.CurrencyTotal)
	for _, e := range s.db.expenses {
		if e.UserID != userID || !inDateRange(e.Date, r) {
			continue
		}
		t, ok := acc[e.CurrencyCode]
		if !ok {
			t = &store.CurrencyTotal{CurrencyCode: e.CurrencyCode}
			acc[e.CurrencyCode] = t
		}
		t.Total = t.Total.Add(e.Amount)
		t.Count++
	}
	return sortedTotals(acc), nil
}

func (s memExpenseStore) SumByCategory(_ context.Context, userID uuid.UUID, r models.DateRange) ([]store.CategoryTotal, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	acc := make(map[string]*store.CategoryTotal)
	for _, e := range s.db.expenses {
		if e.UserID != userID || !inDateRange(e.Date, r) {
			continue
		}
		key := e.CategoryID.String() + e.CurrencyCode
		t, ok := acc[key]
		if !ok {
			t = &store.CategoryTotal{
				CategoryID:   e.CategoryID,
				CategoryName: s.db.categories[e.CategoryID].Name,
				CurrencyCode: e.CurrencyCode,
			}
			acc[key] = t
		}
		t.Total = t.Total.Add(e.Amount)
		t.Count++
	}
	totals := make([]store.CategoryTotal, 0, len(acc))
	for _, t := range acc {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Total.GreaterThan(totals[j].Total) })
	return totals, nil
}

type memIncomeStore struct{ db *memDB }

func (s memIncomeStore) Create(_ context.Context, i *models.Income) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	s.db.incomes[i.ID] = *i
	return nil
}

func (s memIncomeStore) FindByID(_ context.Context, userID, id uuid.UUID) (*models.Income, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i, ok := s.db.incomes[id]
	if !ok || i.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &i, nil
}

func (s memIncomeStore) List(_ context.Context, userID uuid.UUID, f models.IncomeFilter) ([]models.Income, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var matched []models.Income
	for _, i := range s.db.incomes {
		if i.UserID != userID {
			continue
		}
		if f.Source != "" && i.Source != f.Source {
			continue
		}
		if f.CurrencyCode != "" && i.CurrencyCode != f.CurrencyCode {
			continue
		}
		if !inAmountRange(i.Amount, f.Amount) || !inDateRange(i.Date, f.Date) {
			continue
		}
		matched = append(matched, i)
	}
	sort.Slice(matched, func(x, y int) bool {
		a, b := matched[x], matched[y]
		var c int
		switch f.SortBy {
		case models.SortByAmount:
			c = a.Amount.Cmp(b.Amount)
		case models.SortBySource:
			c = strings.Compare(a.Source, b.Source)
		default:
			c = a.Date.Compare(b.Date)
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		if f.SortDesc {
			return c > 0
		}
		return c < 0
	})
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (s memIncomeStore) Update(_ context.Context, i *models.Income) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.incomes[i.ID] = *i
	return nil
}

func (s memIncomeStore) Delete(_ context.Context, i *models.Income) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.incomes[i.ID]
	if !ok || stored.UserID != i.UserID {
		return store.ErrNotFound
	}
	delete(s.db.incomes, i.ID)
	return nil
}

func (s memIncomeStore) SumByCurrency(_ context.Context, userID uuid.UUID, r models.DateRange) ([]store.CurrencyTotal, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	acc := make(map[string]*store.CurrencyTotal)
	for _, i := range s.db.incomes {
		if i.UserID != userID || !inDateRange(i.Date, r) {
			continue
		}
		t, ok := acc[i.CurrencyCode]
		if !ok {
			t = &store.CurrencyTotal{CurrencyCode: i.CurrencyCode}
			acc[i.CurrencyCode] = t
		}
		t.Total = t.Total.Add(i.Amount)
		t.Count++
	}
	return sortedTotals(acc), nil
}

type memUserStore struct{ db *memDB }

func (s memUserStore) Create(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.db.users[u.ID] = *u
	return nil
}

func (s memUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s memUserStore) FindByLogin(_ context.Context, login string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Username == login || u.Email == login {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s memUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, err := s.FindByLogin(context.Background(), username)
	return err == nil, nil
}

func (s memUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := s.FindByLogin(context.Background(), email)
	return err == nil, nil
}

func (s memUserStore) UpdatePassword(_ context.Context, u *models.User, hash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored := s.db.users[u.ID]
	stored.Password = hash
	s.db.users[u.ID] = stored
	u.Password = hash
	return nil
}

func inAmountRange(v decimal.Decimal, r models.AmountRange) bool {
	if r.Exact != nil && !v.Equal(*r.Exact) {
		return false
	}
	if r.Min != nil && v.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && v.GreaterThan(*r.Max) {
		return false
	}
	return true
}

func inDateRange(t time.Time, r models.DateRange) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

func paginate[T any](items []T, p models.Page) []T {
	p = p.Normalize()
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortedTotals(acc map[string]*store.CurrencyTotal) []store.CurrencyTotal {
	totals := make([]store.CurrencyTotal, 0, len(acc))
	for _, t := range acc {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].CurrencyCode < totals[j].CurrencyCode })
	return totals
}

type testEnv struct {
	db         *memDB
	categories *CategoryService
	expenses   *ExpenseService
	incomes    *IncomeService
}

func newTestEnv() *testEnv {
	db := newMemDB()
	categories := NewCategoryService(memCategoryStore{db})
	return &testEnv{
		db:         db,
		categories: categories,
		expenses:   NewExpenseService(memExpenseStore{db}, categories),
		incomes:    NewIncomeService(memIncomeStore{db}),
	}
}
