package dal

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"course-checkout-api/internal/config"
	ordermodel "course-checkout-api/internal/model/order"
)

// NewAuditDB 连接审计库并建表；未配置 host 时返回 nil
func NewAuditDB(c config.MysqlCfg, log *logrus.Logger) (*gorm.DB, error) {
	if !c.Enabled() {
		return nil, nil
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)

	// SQL 日志走 logrus，仅记录慢查询与错误
	gormLogger := logger.New(log, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("connect audit db failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(2 * time.Hour)

	// 请求审计按月分表，由 logger.AuditWriter 首次写入时建表
	if err := db.AutoMigrate(&ordermodel.WebhookEvent{}); err != nil {
		return nil, fmt.Errorf("migrate audit tables failed: %w", err)
	}
	return db, nil
}
