package notify

import (
	"github.com/mymmrac/telego"
	"github.com/sirupsen/logrus"
)

// messageSender *telego.Bot 的子集
type messageSender interface {
	SendMessage(params *telego.SendMessageParams) (*telego.Message, error)
}

// Telegram 通过机器人把告警推到运维群
type Telegram struct {
	bot    messageSender
	chatID int64
	log    logrus.FieldLogger
	async  bool
}

// NewTelegram token 为空时返回 Nop
func NewTelegram(token string, chatID int64, log logrus.FieldLogger) (Notifier, error) {
	if token == "" || chatID == 0 {
		return Nop{}, nil
	}
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: bot, chatID: chatID, log: log, async: true}, nil
}

func (t *Telegram) Alert(a Alert) {
	text := a.Markdown()
	if !t.async {
		t.send(text)
		return
	}
	go t.send(text)
}

func (t *Telegram) send(text string) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Errorf("[Notify] panic: %v", r)
		}
	}()
	_, err := t.bot.SendMessage(&telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: t.chatID},
		Text:      text,
		ParseMode: telego.ModeMarkdownV2,
	})
	if err != nil {
		t.log.WithError(err).Warn("[Notify] telegram 发送失败")
	}
}
