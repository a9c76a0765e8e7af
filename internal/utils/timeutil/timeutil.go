package timeutil

import (
	"time"
)

// DateLayout 网关要求的日期格式 (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// LoadLocation 时区加载失败时回退到 UTC
func LoadLocation(tz string) *time.Location {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DueDate 以 now 所在时区的日期为准，往后推 days 天
func DueDate(now time.Time, days int) string {
	return now.AddDate(0, 0, days).Format(DateLayout)
}

// FormatISO8601 格式化为 RFC3339 (2025-10-03T06:45:21Z)
func FormatISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
