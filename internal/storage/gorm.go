package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PoolConfig 持久层连接池配置
type PoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// Record 持久层键值行
type Record struct {
	Key       string    `gorm:"primarykey;type:varchar(128)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName 指定表名
func (Record) TableName() string {
	return "kv_records"
}

// GormKV 数据库持久层存储，支持 sqlite 与 postgres
type GormKV struct {
	db *gorm.DB
}

// OpenGorm 按驱动打开数据库连接并迁移存储表
func OpenGorm(driver, dsn string, pool PoolConfig) (*GormKV, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	applyPool(sqlDB, pool)
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &GormKV{db: db}, nil
}

// NewGormKV 在既有连接上创建持久层存储（测试用）
func NewGormKV(db *gorm.DB) (*GormKV, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &GormKV{db: db}, nil
}

// Get 读取键值
func (s *GormKV) Get(ctx context.Context, key string) (string, bool, error) {
	var record Record
	err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return record.Value, true, nil
}

// Set 写入键值
func (s *GormKV) Set(ctx context.Context, key, value string) error {
	record := Record{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Save(&record).Error
}

// Delete 删除键
func (s *GormKV) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&Record{}, "key = ?", key).Error
}

func applyPool(sqlDB *sql.DB, pool PoolConfig) {
	if sqlDB == nil {
		return
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
}
