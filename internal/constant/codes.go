package constant

import "net/http"

// Kind 错误分类，决定响应的 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindMethodNotAllowed
	KindConflict
	KindRateLimited
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// HTTPStatus 错误分类对应的状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		// upstream 与 internal 均按 500 返回
		return http.StatusInternalServerError
	}
}

// 常用错误信息
const (
	MsgInvalidPayload      = "Dados inválidos"
	MsgUserRequired        = "User ID is required"
	MsgCourseRequired      = "Course ID is required"
	MsgAmountRequired      = "Amount is required"
	MsgCustomerRequired    = "Customer name and CPF or email are required"
	MsgCardRequired        = "Card holder name, number, expiry and CCV are required"
	MsgUnknownMethod       = "Unsupported payment method"
	MsgCustomerCreate      = "Erro ao criar cliente no Asaas"
	MsgCustomerSearch      = "Erro ao buscar cliente no Asaas"
	MsgPaymentCreate       = "Erro ao processar pagamento"
	MsgDuplicateRequest    = "Duplicate checkout request in progress"
	MsgMissingEvent        = "Missing event"
	MsgWebhookUnauthorized = "Invalid webhook token"
	MsgUnauthorized        = "Unauthorized"
	MsgForbiddenRequester  = "Requester does not match session"
	MsgCourseNotFound      = "Course not found"
	MsgOrderNotFound       = "Order not found"
	MsgMethodNotAllowed    = "Method not allowed"
	MsgNotFound            = "Not found"
	MsgRateLimited         = "Too many requests"
	MsgInternal            = "Internal error"
)
