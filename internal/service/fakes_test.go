package service

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/gateway"
	ordermodel "course-checkout-api/internal/model/order"
	"course-checkout-api/internal/notify"
	"course-checkout-api/internal/utils"
)

func nullLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeGateway struct {
	existing    map[string]*gateway.Customer // cpf 或 email -> 客户
	searches    []string
	created     []gateway.Customer
	payments    []gateway.PaymentRequest
	qrCalls     []string
	qr          *gateway.PixQRCode
	qrErr       error
	createErr   error
	paymentErr  error
	paymentResp *gateway.Payment
}

func (f *fakeGateway) calls() int {
	return len(f.searches) + len(f.created) + len(f.payments) + len(f.qrCalls)
}

func (f *fakeGateway) SearchCustomer(_ context.Context, cpf, email string) (*gateway.Customer, error) {
	key := utils.FirstNonEmpty(cpf, email)
	f.searches = append(f.searches, key)
	return f.existing[key], nil
}

func (f *fakeGateway) CreateCustomer(_ context.Context, in gateway.Customer) (*gateway.Customer, error) {
	f.created = append(f.created, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	in.ID = "cus_new"
	return &in, nil
}

func (f *fakeGateway) CreatePayment(_ context.Context, req gateway.PaymentRequest) (*gateway.Payment, error) {
	f.payments = append(f.payments, req)
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	if f.paymentResp != nil {
		return f.paymentResp, nil
	}
	return &gateway.Payment{
		ID:          "pay_123",
		Customer:    req.Customer,
		Status:      "PENDING",
		BillingType: string(req.BillingType),
		DueDate:     req.DueDate,
		InvoiceURL:  "https://asaas/i/pay_123",
	}, nil
}

func (f *fakeGateway) GetPixQRCode(_ context.Context, id string) (*gateway.PixQRCode, error) {
	f.qrCalls = append(f.qrCalls, id)
	return f.qr, f.qrErr
}

type fakeOrders struct {
	inserted []ordermodel.Order
	err      error
}

func (f *fakeOrders) Insert(_ context.Context, o *ordermodel.Order) (*ordermodel.Order, error) {
	f.inserted = append(f.inserted, *o)
	if f.err != nil {
		return nil, f.err
	}
	out := *o
	out.ID = "501"
	return &out, nil
}

type published struct {
	topic string
	msg   any
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakePublisher) Publish(_ context.Context, topic string, msg any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic, msg})
	return nil
}

type fakeNotifier struct {
	alerts []notify.Alert
}

func (f *fakeNotifier) Alert(a notify.Alert) { f.alerts = append(f.alerts, a) }

// memDedup 内存版去重
type memDedup struct {
	done     map[string][]byte
	inflight map[string]bool
	released []string
}

func newMemDedup() *memDedup {
	return &memDedup{done: map[string][]byte{}, inflight: map[string]bool{}}
}

func (m *memDedup) Claim(_ context.Context, key string) ([]byte, error) {
	if b, ok := m.done[key]; ok {
		return b, nil
	}
	if m.inflight[key] {
		return nil, constant.NewError(constant.KindConflict, constant.MsgDuplicateRequest)
	}
	m.inflight[key] = true
	return nil, nil
}

func (m *memDedup) Complete(_ context.Context, key string, b []byte) {
	delete(m.inflight, key)
	m.done[key] = b
}

func (m *memDedup) Release(_ context.Context, key string) {
	delete(m.inflight, key)
	m.released = append(m.released, key)
}
