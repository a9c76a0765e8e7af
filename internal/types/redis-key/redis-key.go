package rediskey

// 下单去重：Idempotency-Key 或请求摘要
func CheckoutDedup(key string) string {
	return "checkout:dedup:" + key
}

// 网关回调事件重复投递标记
func WebhookEvent(eventID string) string {
	return "webhook:evt:" + eventID
}

// 课程详情缓存
func Course(id string) string {
	return "course:" + id
}

// 上游成功率
func UpstreamRate(name string) string {
	return "upstream:success_rate:" + name
}

// 上游降级告警标记，TTL 内只告警一次
func UpstreamDegraded(name string) string {
	return "upstream:degraded:" + name
}
