// Package telegram implements transport.Sender over the Telegram Bot
// API. Used when a relay channel points at a Telegram chat instead of a
// webhook; the message shape is flattened to Telegram markdown.
package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"ecorelay/internal/transport"
	"ecorelay/pkg/logx"
)

type Config struct {
	Token    string
	ChatID   int64
	ThreadID int // forum topic thread id (0 if none)
}

type Sender struct {
	bot      *tele.Bot
	chatID   int64
	threadID int
	log      logx.Logger
}

// New builds a Sender with its own bot instance. Several senders may
// share a token; telebot sessions are cheap when polling is off.
func New(cfg Config, log logx.Logger) (*Sender, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	// Send-only: no poller, never Start()ed.
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, err
	}
	return &Sender{bot: b, chatID: cfg.ChatID, threadID: cfg.ThreadID, log: log}, nil
}

func (s *Sender) Send(ctx context.Context, m transport.Message) error {
	_ = ctx // telebot v4 send API has no context hook; rely on its HTTP timeout

	var b strings.Builder
	if m.SenderName != "" {
		b.WriteString("*")
		b.WriteString(escapeMarkdown(m.SenderName))
		b.WriteString("*: ")
	}
	b.WriteString(m.Body)
	for _, a := range m.Attachments {
		b.WriteString("\n")
		if a.Author != nil && a.Author.Name != "" {
			b.WriteString("_")
			b.WriteString(escapeMarkdown(a.Author.Name))
			b.WriteString("_ — ")
		}
		b.WriteString(a.Description)
	}

	opts := &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		DisableWebPagePreview: true,
		ThreadID:              s.threadID,
	}
	started := time.Now()
	_, err := s.bot.Send(&tele.Chat{ID: s.chatID}, b.String(), opts)
	if err != nil {
		return err
	}
	s.log.Debug("telegram delivered",
		logx.Int64("chat_id", s.chatID),
		logx.Duration("took", time.Since(started)))
	return nil
}

func escapeMarkdown(s string) string {
	r := strings.NewReplacer("*", "\\*", "_", "\\_", "`", "\\`", "[", "\\[")
	return r.Replace(s)
}
