package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/utils"
)

// Observer 记录每次调用是否成功，*health.Tracker 满足
type Observer interface {
	Observe(ctx context.Context, upstream string, success bool)
}

// Client Asaas v3 接口封装，每个方法对应一次 HTTP 调用，不做重试
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	log      logrus.FieldLogger
	observer Observer
}

func NewClient(baseURL, apiKey string, httpClient *http.Client, log logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = utils.NewHTTPClient(0)
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, http: httpClient, log: log}
}

func (c *Client) WithObserver(o Observer) *Client {
	c.observer = o
	return c
}

func (c *Client) observe(ctx context.Context, res *utils.HTTPResult, err error) {
	if c.observer == nil {
		return
	}
	// 4xx 属于业务校验失败，不计入上游故障
	c.observer.Observe(ctx, "asaas", err == nil && res.StatusCode < http.StatusInternalServerError)
}

// call 发起请求；message 用于构造失败时的错误信息
func (c *Client) call(ctx context.Context, method, endpoint string, payload any, out any, message string) error {
	res, err := utils.DoJSON(ctx, c.http, method, c.baseURL+"/"+endpoint, map[string]string{
		"access_token": c.apiKey,
	}, payload)
	c.observe(ctx, res, err)
	if err != nil {
		c.log.WithFields(logrus.Fields{"method": method, "endpoint": endpoint}).WithError(err).Error("[Asaas] 请求失败")
		return constant.Wrap(constant.KindUpstream, message, err)
	}
	if !res.OK() {
		c.log.WithFields(logrus.Fields{"method": method, "endpoint": endpoint, "status": res.StatusCode}).
			Warnf("[Asaas] 返回错误: %s", res.Raw)
		return constant.Upstream(message, errorDetails(res))
	}
	if out != nil {
		if err := res.Decode(out); err != nil {
			return constant.Wrap(constant.KindUpstream, message, err).WithData(res.Parsed())
		}
	}
	return nil
}

// errorDetails 优先返回 {errors:[...]}，否则返回原始响应
func errorDetails(res *utils.HTTPResult) any {
	var er errorResponse
	if err := json.Unmarshal(res.Body, &er); err == nil && len(er.Errors) > 0 {
		return er.Errors
	}
	return res.Parsed()
}

// SearchCustomer 按 CPF/CNPJ 查找，其次按邮箱；未找到返回 nil
func (c *Client) SearchCustomer(ctx context.Context, cpfCnpj, email string) (*Customer, error) {
	q := url.Values{}
	switch {
	case cpfCnpj != "":
		q.Set("cpfCnpj", cpfCnpj)
	case email != "":
		q.Set("email", email)
	default:
		return nil, nil
	}

	var list listResponse[Customer]
	if err := c.call(ctx, http.MethodGet, "customers?"+q.Encode(), nil, &list, constant.MsgCustomerSearch); err != nil {
		return nil, err
	}
	if len(list.Data) == 0 || list.Data[0].ID == "" {
		return nil, nil
	}
	return &list.Data[0], nil
}

// CreateCustomer 创建客户，返回无 id 视为失败
func (c *Client) CreateCustomer(ctx context.Context, in Customer) (*Customer, error) {
	in.ID = ""
	var out Customer
	if err := c.call(ctx, http.MethodPost, "customers", in, &out, constant.MsgCustomerCreate); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, constant.Upstream(constant.MsgCustomerCreate, nil)
	}
	return &out, nil
}

// CreatePayment 创建收款
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	var out Payment
	if err := c.call(ctx, http.MethodPost, "payments", req, &out, constant.MsgPaymentCreate); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, constant.Upstream(constant.MsgPaymentCreate, nil)
	}
	return &out, nil
}

// GetPixQRCode 拉取收款的 PIX 二维码
func (c *Client) GetPixQRCode(ctx context.Context, paymentID string) (*PixQRCode, error) {
	var out PixQRCode
	if err := c.call(ctx, http.MethodGet, "payments/"+url.PathEscape(paymentID)+"/pixQrCode", nil, &out, "pix qr code fetch failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyAccount 探测 API Key 是否可用
func (c *Client) MyAccount(ctx context.Context) (*Account, error) {
	var out Account
	if err := c.call(ctx, http.MethodGet, "myAccount", nil, &out, "account probe failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

// PixAddressKeys 列出账户已登记的 PIX key
func (c *Client) PixAddressKeys(ctx context.Context) ([]PixAddressKey, error) {
	var list listResponse[PixAddressKey]
	if err := c.call(ctx, http.MethodGet, "pix/addressKeys", nil, &list, "pix key probe failed"); err != nil {
		return nil, err
	}
	return list.Data, nil
}
