package store

import (
	"mybudget/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ownedBy 限定为指定用户的数据
func ownedBy(table string, userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".user_id = ?", userID)
	}
}

// amountScope 精确金额 / 最小金额 / 最大金额
func amountScope(column string, r models.AmountRange) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.Exact != nil {
			db = db.Where(column+" = ?", *r.Exact)
		}
		if r.Min != nil {
			db = db.Where(column+" >= ?", *r.Min)
		}
		if r.Max != nil {
			db = db.Where(column+" <= ?", *r.Max)
		}
		return db
	}
}

// dateRangeScope 日期范围，两端包含
func dateRangeScope(column string, r models.DateRange) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.From != nil {
			db = db.Where(column+" >= ?", r.From.UTC())
		}
		if r.To != nil {
			db = db.Where(column+" <= ?", r.To.UTC())
		}
		return db
	}
}

// orderScope 主排序字段 + id 兜底，保证相同条件下结果顺序稳定
func orderScope(table, column string, desc bool) func(*gorm.DB) *gorm.DB {
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + "." + column + dir + ", " + table + ".id" + dir)
	}
}

func pageScope(p models.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}

// expenseFilterScope 消费记录筛选条件（不含排序分页），filter 需已 Normalize
func expenseFilterScope(userID uuid.UUID, f models.ExpenseFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = ownedBy("expenses", userID)(db)
		if f.CategoryID != nil {
			db = db.Where("expenses.category_id = ?", *f.CategoryID)
		}
		if f.CurrencyCode != "" {
			db = db.Where("expenses.currency_code = ?", f.CurrencyCode)
		}
		db = amountScope("expenses.amount", f.Amount)(db)
		return dateRangeScope("expenses.date", f.Date)(db)
	}
}

// incomeFilterScope 收入记录筛选条件（不含排序分页），filter 需已 Normalize
func incomeFilterScope(userID uuid.UUID, f models.IncomeFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = ownedBy("incomes", userID)(db)
		if f.Source != "" {
			db = db.Where("incomes.source = ?", f.Source)
		}
		if f.CurrencyCode != "" {
			db = db.Where("incomes.currency_code = ?", f.CurrencyCode)
		}
		db = amountScope("incomes.amount", f.Amount)(db)
		return dateRangeScope("incomes.date", f.Date)(db)
	}
}
