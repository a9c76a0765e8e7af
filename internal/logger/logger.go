package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"

	"course-checkout-api/internal/config"
)

// New 构造应用日志；配置了目录则按天切割，保留 7 天
func New(c config.LogCfg) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if c.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				return f.Function, fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
			},
		})
	}

	if c.Dir == "" {
		log.SetOutput(os.Stdout)
		return log, nil
	}

	writer, err := NewRotateWriter(c.Dir, "checkout")
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, writer))
	return log, nil
}

// NewRotateWriter dir/name.log.YYYY-MM-DD，软链 dir/name.log
func NewRotateWriter(dir, name string) (io.Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir failed: %w", err)
	}
	base := filepath.Join(dir, name+".log")
	return rotatelogs.New(
		base+".%Y-%m-%d",
		rotatelogs.WithLinkName(base),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
}
