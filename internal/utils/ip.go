package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIP 客户端 IP。
// 只有 RemoteAddr 属于 SetTrustedProxies 配置的代理时才采信 X-Forwarded-For / X-Real-IP，
// 否则客户端伪造的头会让按 IP 限流失效。
func ClientIP(c *gin.Context) string {
	if ip := c.ClientIP(); net.ParseIP(ip) != nil {
		return ip
	}
	// 兜底：RemoteAddr 没有端口时 gin 返回空
	ip := strings.TrimSpace(c.Request.RemoteAddr)
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if net.ParseIP(ip) == nil {
		return ""
	}
	return ip
}
