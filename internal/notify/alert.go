package notify

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Notifier 运维告警
type Notifier interface {
	Alert(a Alert)
}

// Nop 未配置机器人时使用
type Nop struct{}

func (Nop) Alert(Alert) {}

// Alert 上游异常告警内容
type Alert struct {
	Level    string
	Title    string
	Endpoint string
	Request  any
	Response any
	Extra    map[string]string
	At       time.Time
}

// Markdown 渲染为 Telegram MarkdownV2 文本
func (a Alert) Markdown() string {
	at := a.At
	if at.IsZero() {
		at = time.Now()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*\\[%s\\] %s*\n", escapeMarkdown(a.Level), escapeMarkdown(a.Title)))
	if a.Endpoint != "" {
		sb.WriteString(fmt.Sprintf("*接口:* %s\n", escapeMarkdown(a.Endpoint)))
	}
	sb.WriteString(fmt.Sprintf("*时间:* %s\n", escapeMarkdown(at.Format("2006-01-02 15:04:05"))))

	keys := make([]string, 0, len(a.Extra))
	for k, v := range a.Extra {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s: %s\n", escapeMarkdown(k), escapeMarkdown(a.Extra[k])))
	}

	if s := compactJSON(a.Request); s != "" {
		sb.WriteString("\n*请求参数:*\n`" + escapeCode(s) + "`\n")
	}
	if s := compactJSON(a.Response); s != "" {
		sb.WriteString("\n*上游返回:*\n`" + escapeCode(s) + "`\n")
	}
	return sb.String()
}

func compactJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	s := strings.TrimSpace(string(b))
	if s == "{}" || s == "null" || s == `""` {
		return ""
	}
	return s
}

// escapeMarkdown 转义 Telegram MarkdownV2 特殊字符
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
		"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
		"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(s)
}

// escapeCode 代码块内只需转义 ` 和 \
func escapeCode(s string) string {
	return strings.NewReplacer("\\", "\\\\", "`", "\\`").Replace(s)
}
