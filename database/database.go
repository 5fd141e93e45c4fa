package database

import (
	"fmt"
	"log"

	"mybudget/config"
	"mybudget/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 按配置打开数据库连接并完成表结构迁移
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(&cfg.Database)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// 唯一约束错误翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	if err := Migrate(db, cfg.Database.Driver); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	log.Println("数据库初始化成功")
	return db, nil
}

// Dialector 根据驱动类型构建 gorm 方言
func Dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverMySQL, "":
		return mysql.Open(MySQLDSN(cfg)), nil
	case config.DriverPostgres:
		return postgres.Open(PostgresDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// MySQLDSN 构建 MySQL DSN 连接字符串
func MySQLDSN(cfg *config.DatabaseConfig) string {
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		charset,
	)
}

// PostgresDSN 构建 PostgreSQL DSN 连接字符串
func PostgresDSN(cfg *config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.DBName,
		sslMode,
	)
}

// Migrate 自动迁移数据库表
// 类别表需要在消费表之前创建，以便建立 ON DELETE RESTRICT 外键
func Migrate(db *gorm.DB, driver string) error {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return err
	}

	if err := caseSensitiveDB(db, driver).AutoMigrate(caseSensitiveModels()...); err != nil {
		return err
	}

	return db.AutoMigrate(&models.Expense{})
}

// caseSensitiveModels 文本按精确值比较的表：类别名称（"Food" 与 "food" 是两个类别）、收入来源
func caseSensitiveModels() []interface{} {
	return []interface{}{
		&models.Category{},
		&models.Income{},
	}
}

// caseSensitiveTableOptions MySQL 默认排序规则不区分大小写，这里指定二进制排序规则
func caseSensitiveTableOptions(driver string) string {
	if driver == config.DriverMySQL || driver == "" {
		return "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"
	}
	return ""
}

func caseSensitiveDB(db *gorm.DB, driver string) *gorm.DB {
	if opts := caseSensitiveTableOptions(driver); opts != "" {
		return db.Set("gorm:table_options", opts)
	}
	return db
}
