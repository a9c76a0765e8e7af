package logger

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"course-checkout-api/internal/idgen"
	ordermodel "course-checkout-api/internal/model/order"
	"course-checkout-api/internal/shard"
)

// AuditWriter 接口请求审计，按月分表异步写入审计库
type AuditWriter struct {
	db     *gorm.DB
	tables *shard.MonthRouter
	log    logrus.FieldLogger
	// 测试中同步写入
	sync bool
}

func NewAuditWriter(db *gorm.DB, log logrus.FieldLogger) *AuditWriter {
	w := &AuditWriter{db: db, log: log}
	w.tables = shard.NewMonthRouter(ordermodel.RequestLog{}.TableName(), func(table string) error {
		return db.Table(table).AutoMigrate(&ordermodel.RequestLog{})
	})
	return w
}

// Write db 为空时直接丢弃
func (w *AuditWriter) Write(entry ordermodel.RequestLog) {
	if w == nil || w.db == nil {
		return
	}
	if entry.ID == 0 {
		entry.ID = idgen.New()
	}
	if w.sync {
		w.insert(entry)
		return
	}
	go w.insert(entry)
}

func (w *AuditWriter) insert(entry ordermodel.RequestLog) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Errorf("[AuditLogger] goroutine panic: trace_id=%s, err=%v", entry.TraceID, r)
		}
	}()
	table, err := w.tables.Table(entry.CreatedAt)
	if err != nil {
		w.log.WithField("trace_id", entry.TraceID).WithError(err).Warn("[AuditLogger] 建表失败")
		return
	}
	if err := w.db.Table(table).Create(&entry).Error; err != nil {
		w.log.WithField("trace_id", entry.TraceID).WithError(err).Warn("[AuditLogger] 写入失败")
	}
}
