package logger

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"course-checkout-api/internal/config"
	"course-checkout-api/internal/idgen"
	ordermodel "course-checkout-api/internal/model/order"
	"course-checkout-api/internal/shard"
)

func TestNewStdoutLogger(t *testing.T) {
	log, err := New(config.LogCfg{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestNewFileLogger(t *testing.T) {
	dir := t.TempDir()
	log, err := New(config.LogCfg{Dir: dir, Level: "nope"})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	log.Info("hello")
	matches, err := filepath.Glob(filepath.Join(dir, "checkout.log.*"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	b, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello")
}

func TestAuditWriterInserts(t *testing.T) {
	require.NoError(t, idgen.Init(2))
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		&gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `checkout_request_logs_202610`")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := NewAuditWriter(db, logrus.New())
	w.sync = true
	var ensured []string
	w.tables = shard.NewMonthRouter("checkout_request_logs", func(table string) error {
		ensured = append(ensured, table)
		return nil
	})
	w.Write(ordermodel.RequestLog{TraceID: "t-1", Path: "/api/v1/checkout", HTTPStatus: 200, CreatedAt: at})

	assert.Equal(t, []string{"checkout_request_logs_202610"}, ensured)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditWriterNilDB(t *testing.T) {
	var w *AuditWriter
	assert.NotPanics(t, func() { w.Write(ordermodel.RequestLog{}) })
	assert.NotPanics(t, func() { NewAuditWriter(nil, logrus.New()).Write(ordermodel.RequestLog{}) })
}
