package database

import (
	"testing"

	"mybudget/config"
	"mybudget/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func testDatabaseConfig(driver string) *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:   driver,
		Host:     "db.local",
		Port:     "3306",
		Username: "budget",
		Password: "secret",
		DBName:   "mybudget",
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(testDatabaseConfig(config.DriverMySQL))
	assert.Equal(t, "budget:secret@tcp(db.local:3306)/mybudget?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
}

func TestPostgresDSN(t *testing.T) {
	cfg := testDatabaseConfig(config.DriverPostgres)
	cfg.Port = "5432"
	dsn := PostgresDSN(cfg)
	assert.Contains(t, dsn, "host=db.local port=5432")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "dbname=mybudget")
}

func TestDialector(t *testing.T) {
	d, err := Dialector(testDatabaseConfig(config.DriverMySQL))
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	d, err = Dialector(testDatabaseConfig(config.DriverPostgres))
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector(testDatabaseConfig("sqlserver"))
	assert.Error(t, err)
}

func TestCaseSensitiveTables(t *testing.T) {
	// 类别名称和收入来源都按精确值筛选
	assert.Contains(t, caseSensitiveModels(), &models.Category{})
	assert.Contains(t, caseSensitiveModels(), &models.Income{})
	assert.NotContains(t, caseSensitiveModels(), &models.Expense{})

	assert.Contains(t, caseSensitiveTableOptions(config.DriverMySQL), "COLLATE=utf8mb4_bin")
	assert.Contains(t, caseSensitiveTableOptions(""), "COLLATE=utf8mb4_bin")
	assert.Empty(t, caseSensitiveTableOptions(config.DriverPostgres))
}

func TestCaseSensitiveDB(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	opts, ok := caseSensitiveDB(db, config.DriverMySQL).Get("gorm:table_options")
	require.True(t, ok)
	assert.Equal(t, caseSensitiveTableOptions(config.DriverMySQL), opts)

	_, ok = caseSensitiveDB(db, config.DriverPostgres).Get("gorm:table_options")
	assert.False(t, ok)
}
