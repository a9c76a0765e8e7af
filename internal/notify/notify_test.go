package notify

import (
	"io"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*telego.SendMessageParams
}

func (f *fakeSender) SendMessage(p *telego.SendMessageParams) (*telego.Message, error) {
	f.sent = append(f.sent, p)
	return &telego.Message{}, nil
}

func TestAlertMarkdownEscapes(t *testing.T) {
	a := Alert{
		Level:    LevelError,
		Title:    "Erro ao processar pagamento",
		Endpoint: "POST payments",
		Extra:    map[string]string{"charge": "pay_1", "empty": ""},
		Response: map[string]string{"code": "invalid_value"},
		At:       time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}
	text := a.Markdown()

	assert.Contains(t, text, "*\\[ERROR\\] Erro ao processar pagamento*")
	assert.Contains(t, text, "charge: pay\\_1")
	assert.NotContains(t, text, "empty")
	assert.Contains(t, text, "2026\\-01\\-02 10:00:00")
	assert.Contains(t, text, "`{\"code\":\"invalid_value\"}`")
	assert.NotContains(t, text, "请求参数")
}

func TestTelegramSendsToChat(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	fs := &fakeSender{}
	tg := &Telegram{bot: fs, chatID: -100, log: log}

	tg.Alert(Alert{Level: LevelWarn, Title: "x"})

	require.Len(t, fs.sent, 1)
	assert.Equal(t, int64(-100), fs.sent[0].ChatID.ID)
	assert.Equal(t, telego.ModeMarkdownV2, fs.sent[0].ParseMode)
}

func TestNewTelegramWithoutTokenIsNop(t *testing.T) {
	n, err := NewTelegram("", 0, logrus.New())
	require.NoError(t, err)
	assert.IsType(t, Nop{}, n)
}
