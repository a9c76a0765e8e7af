package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/sirupsen/logrus"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/dto"
	"course-checkout-api/internal/event"
	"course-checkout-api/internal/gateway"
	ordermodel "course-checkout-api/internal/model/order"
	"course-checkout-api/internal/notify"
	"course-checkout-api/internal/utils"
	"course-checkout-api/internal/utils/timeutil"
)

const (
	msgCheckoutOK  = "Pagamento criado com sucesso"
	unknownOrderID = "unknown"
	comboCourseID  = "combo"
)

// PaymentGateway 网关操作，*gateway.Client 满足
type PaymentGateway interface {
	SearchCustomer(ctx context.Context, cpfCnpj, email string) (*gateway.Customer, error)
	CreateCustomer(ctx context.Context, in gateway.Customer) (*gateway.Customer, error)
	CreatePayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.Payment, error)
	GetPixQRCode(ctx context.Context, paymentID string) (*gateway.PixQRCode, error)
}

type OrderWriter interface {
	Insert(ctx context.Context, o *ordermodel.Order) (*ordermodel.Order, error)
}

// Deduper 下单去重，*idempotency.Guard 满足
type Deduper interface {
	Claim(ctx context.Context, key string) ([]byte, error)
	Complete(ctx context.Context, key string, response []byte)
	Release(ctx context.Context, key string)
}

type CheckoutOptions struct {
	DueDays     int
	Location    *time.Location
	DedupWindow time.Duration
}

type CheckoutService struct {
	gw       PaymentGateway
	orders   OrderWriter
	dedup    Deduper
	pub      event.Publisher
	notifier notify.Notifier
	opts     CheckoutOptions
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewCheckoutService(gw PaymentGateway, orders OrderWriter, dedup Deduper, pub event.Publisher,
	notifier notify.Notifier, opts CheckoutOptions, log logrus.FieldLogger) *CheckoutService {
	if opts.DueDays <= 0 {
		opts.DueDays = 3
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = 10 * time.Minute
	}
	if pub == nil {
		pub = event.Nop{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &CheckoutService{
		gw: gw, orders: orders, dedup: dedup, pub: pub, notifier: notifier,
		opts: opts, log: log, now: time.Now,
	}
}

// MapBillingType 前端支付方式 -> 网关收款方式；未知方式拒绝
func MapBillingType(method string) (gateway.BillingType, error) {
	switch method {
	case "pay_pix":
		return gateway.BillingPix, nil
	case "pay_boleto":
		return gateway.BillingBoleto, nil
	case "pay_cc":
		return gateway.BillingCreditCard, nil
	default:
		return "", constant.Validation(constant.MsgUnknownMethod).WithData(map[string]string{"payment_method": method})
	}
}

// Checkout 处理下单：校验 -> 去重 -> 客户 -> 收款 -> PIX -> 落库
func (s *CheckoutService) Checkout(ctx context.Context, req dto.CheckoutReq, idempotencyKey string) (*dto.CheckoutResp, error) {
	billing, err := validateCheckout(&req)
	if err != nil {
		return nil, err
	}

	key := s.dedupKey(req, idempotencyKey)
	if s.dedup != nil {
		replay, err := s.dedup.Claim(ctx, key)
		if err != nil {
			return nil, err
		}
		if replay != nil {
			var resp dto.CheckoutResp
			if err := json.Unmarshal(replay, &resp); err == nil {
				s.log.WithFields(logrus.Fields{"user_id": req.UserID, "charge_id": resp.Payment.ID}).
					Info("[Checkout] 重复请求，返回已有结果")
				return &resp, nil
			}
		}
	}

	resp, err := s.checkout(ctx, req, billing)
	if s.dedup != nil {
		if err != nil {
			s.dedup.Release(ctx, key)
		} else if b, mErr := json.Marshal(resp); mErr == nil {
			s.dedup.Complete(ctx, key, b)
		}
	}
	return resp, err
}

func (s *CheckoutService) checkout(ctx context.Context, req dto.CheckoutReq, billing gateway.BillingType) (*dto.CheckoutResp, error) {
	userID, courseID := req.UserID.String(), req.CourseID.String()
	log := s.log.WithFields(logrus.Fields{"user_id": userID, "course_id": courseID, "billing_type": billing})

	// 1) 客户：先查后建
	customer, err := s.resolveCustomer(ctx, req.Customer)
	if err != nil {
		log.WithError(err).Error("[Checkout] 客户处理失败")
		s.alert(constant.MsgCustomerCreate, "customers", userID, courseID, err)
		return nil, err
	}

	// 2) 构造收款
	now := s.now().In(s.opts.Location)
	payReq := gateway.PaymentRequest{
		Customer:          customer.ID,
		BillingType:       billing,
		Value:             req.Amount.InexactFloat64(),
		DueDate:           timeutil.DueDate(now, s.opts.DueDays),
		Description:       describeCourse(courseID),
		ExternalReference: fmt.Sprintf("%s_%d", userID, now.Unix()),
	}
	if billing == gateway.BillingCreditCard {
		payReq.CreditCard = &gateway.CreditCard{
			HolderName:  strings.TrimSpace(req.Card.HolderName),
			Number:      utils.OnlyDigits(req.Card.Number.String()),
			ExpiryMonth: req.Card.ExpiryMonth.String(),
			ExpiryYear:  req.Card.ExpiryYear.String(),
			Ccv:         req.Card.Ccv.String(),
		}
		payReq.CreditCardHolderInfo = &gateway.CreditCardHolderInfo{
			Name:          customer.Name,
			Email:         customer.Email,
			CpfCnpj:       customer.CpfCnpj,
			MobilePhone:   customer.MobilePhone,
			PostalCode:    req.Customer.PostalCode,
			AddressNumber: req.Customer.AddressNumber,
		}
	}

	// 3) 提交收款
	payment, err := s.gw.CreatePayment(ctx, payReq)
	if err != nil {
		log.WithError(err).Error("[Checkout] 创建收款失败")
		s.alert(constant.MsgPaymentCreate, "payments", userID, courseID, err)
		return nil, err
	}
	log = log.WithField("charge_id", payment.ID)

	resp := &dto.CheckoutResp{Message: msgCheckoutOK, OrderID: unknownOrderID}
	if err := copier.Copy(&resp.Payment, payment); err != nil {
		return nil, constant.Wrap(constant.KindInternal, constant.MsgInternal, err)
	}

	// 4) PIX 二维码，失败不影响下单
	var pixCode *string
	if billing == gateway.BillingPix {
		qr, err := s.gw.GetPixQRCode(ctx, payment.ID)
		if err != nil {
			log.WithError(err).Warn("[Checkout] 获取 PIX 二维码失败")
		} else if qr != nil && qr.Payload != "" {
			resp.Payment.PixQRCode = &dto.PixQRCodeResp{
				Payload:        qr.Payload,
				EncodedImage:   qr.EncodedImage,
				ExpirationDate: qr.ExpirationDate,
			}
			pixCode = &qr.Payload
		}
	}

	// 5) 订单落库，失败只记录，收款已存在必须返回给用户
	createdAt := now.UTC()
	order := &ordermodel.Order{
		UserID:        userID,
		CourseID:      courseID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		AsaasID:       payment.ID,
		Status:        ordermodel.StatusPending,
		PixCode:       pixCode,
		CreatedAt:     &createdAt,
	}
	if invoice := utils.FirstNonEmpty(payment.BankSlipURL, payment.InvoiceURL); invoice != "" {
		order.InvoiceURL = &invoice
	}
	saved, err := s.orders.Insert(ctx, order)
	if err != nil {
		log.WithError(err).Error("[Checkout] 订单落库失败")
		s.alert("Falha ao salvar pedido", "orders", userID, courseID, err)
	} else if saved != nil && saved.ID != "" {
		resp.OrderID = saved.ID.String()
	}

	// 6) 发布下单事件
	if err := s.pub.Publish(ctx, event.TopicOrderCreated, event.OrderCreated{
		OrderID:       resp.OrderID,
		UserID:        userID,
		CourseID:      courseID,
		ChargeID:      payment.ID,
		Amount:        req.Amount.String(),
		PaymentMethod: req.PaymentMethod,
		BillingType:   string(billing),
		CreatedAt:     createdAt.Unix(),
	}); err != nil {
		log.WithError(err).Warn("[Checkout] 发布下单事件失败")
	}

	log.WithField("order_id", resp.OrderID).Info("[Checkout] 下单成功")
	return resp, nil
}

// resolveCustomer 依次按 CPF、邮箱查找，未找到则创建
func (s *CheckoutService) resolveCustomer(ctx context.Context, in *dto.CustomerReq) (*gateway.Customer, error) {
	want := gateway.Customer{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		CpfCnpj:     utils.OnlyDigits(in.Cpf),
		MobilePhone: utils.OnlyDigits(in.Phone),
	}

	if want.CpfCnpj != "" {
		found, err := s.gw.SearchCustomer(ctx, want.CpfCnpj, "")
		if err != nil {
			return nil, err
		}
		if found != nil {
			return merge(found, want), nil
		}
	}
	if want.Email != "" {
		found, err := s.gw.SearchCustomer(ctx, "", want.Email)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return merge(found, want), nil
		}
	}
	return s.gw.CreateCustomer(ctx, want)
}

// merge 已有客户缺失的字段用请求中的补齐，持卡人信息需要
func merge(found *gateway.Customer, want gateway.Customer) *gateway.Customer {
	out := *found
	out.Name = utils.FirstNonEmpty(out.Name, want.Name)
	out.Email = utils.FirstNonEmpty(out.Email, want.Email)
	out.CpfCnpj = utils.FirstNonEmpty(out.CpfCnpj, want.CpfCnpj)
	out.MobilePhone = utils.FirstNonEmpty(out.MobilePhone, want.MobilePhone)
	return &out
}

func (s *CheckoutService) dedupKey(req dto.CheckoutReq, idempotencyKey string) string {
	if k := strings.TrimSpace(idempotencyKey); k != "" {
		return utils.HashKey(req.UserID.String(), k)
	}
	sec := int64(s.opts.DedupWindow / time.Second)
	if sec <= 0 {
		sec = 1
	}
	window := s.now().Unix() / sec
	return utils.HashKey(req.UserID.String(), req.CourseID.String(), req.Amount.String(),
		req.PaymentMethod, strconv.FormatInt(window, 10))
}

func (s *CheckoutService) alert(title, endpoint, userID, courseID string, err error) {
	a := notify.Alert{
		Level:    notify.LevelError,
		Title:    title,
		Endpoint: endpoint,
		Extra:    map[string]string{"user_id": userID, "course_id": courseID},
	}
	if ce, ok := constant.As(err); ok {
		a.Response = ce.Details()
		a.Extra["error"] = ce.Error()
	} else {
		a.Extra["error"] = err.Error()
	}
	s.notifier.Alert(a)
}

func describeCourse(courseID string) string {
	if courseID == comboCourseID {
		return "Pedido Curso - Combo Completo"
	}
	return "Pedido Curso - Curso Individual (" + courseID + ")"
}

// validateCheckout 不发起任何上游调用
func validateCheckout(req *dto.CheckoutReq) (gateway.BillingType, error) {
	req.UserID = utils.StringOrNumber(strings.TrimSpace(req.UserID.String()))
	req.CourseID = utils.StringOrNumber(strings.TrimSpace(req.CourseID.String()))
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)

	switch {
	case req.UserID == "":
		return "", constant.Validation(constant.MsgUserRequired)
	case req.CourseID == "":
		return "", constant.Validation(constant.MsgCourseRequired)
	case !req.Amount.IsPositive():
		return "", constant.Validation(constant.MsgAmountRequired)
	}

	billing, err := MapBillingType(req.PaymentMethod)
	if err != nil {
		return "", err
	}

	c := req.Customer
	if c == nil || strings.TrimSpace(c.Name) == "" ||
		(utils.OnlyDigits(c.Cpf) == "" && strings.TrimSpace(c.Email) == "") {
		return "", constant.Validation(constant.MsgCustomerRequired)
	}

	if billing == gateway.BillingCreditCard {
		card := req.Card
		if card == nil || strings.TrimSpace(card.HolderName) == "" || utils.OnlyDigits(card.Number.String()) == "" ||
			card.ExpiryMonth == "" || card.ExpiryYear == "" || card.Ccv == "" {
			return "", constant.Validation(constant.MsgCardRequired)
		}
	}
	return billing, nil
}
