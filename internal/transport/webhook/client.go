// Package webhook implements transport.Sender over Discord-compatible
// incoming webhooks.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ecorelay/internal/transport"
	"ecorelay/pkg/logx"
)

// DefaultBaseURL is the webhook API base. Discord accepts both the
// discord.com and legacy discordapp.com hosts.
const DefaultBaseURL = "https://discord.com/api/webhooks"

type Config struct {
	// URL is the full webhook URL. When empty it is assembled from
	// BaseURL (DefaultBaseURL if empty), ID and Token.
	URL     string
	BaseURL string
	ID      string
	Token   string

	// RatePerSec caps outbound posts. Discord throttles webhooks around
	// 30 req/min; default is conservative.
	RatePerSec float64

	Timeout time.Duration // per-request; default 10s
}

// Client posts messages to one webhook. Safe for concurrent use.
type Client struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	log     logx.Logger
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		base := strings.TrimRight(cfg.BaseURL, "/")
		if base == "" {
			base = DefaultBaseURL
		}
		if cfg.ID == "" || cfg.Token == "" {
			return nil, errors.New("webhook id and token are required")
		}
		url = base + "/" + cfg.ID + "/" + cfg.Token
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 0.4 // ~24/min
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		url:     url,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     log,
	}, nil
}

// Wire shapes. Field names follow the webhook execute API.
type payload struct {
	Content   string  `json:"content"`
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Embeds    []embed `json:"embeds,omitempty"`
}

type embed struct {
	Author      *embedAuthor `json:"author,omitempty"`
	Description string       `json:"description,omitempty"`
}

type embedAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

func (c *Client) Send(ctx context.Context, m transport.Message) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	p := payload{
		Content:   m.Body,
		Username:  m.SenderName,
		AvatarURL: m.SenderAvatar,
	}
	for _, a := range m.Attachments {
		e := embed{Description: a.Description}
		if a.Author != nil {
			e.Author = &embedAuthor{Name: a.Author.Name, IconURL: a.Author.IconURL}
		}
		p.Embeds = append(p.Embeds, e)
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("webhook: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("webhook: post failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	c.log.Debug("webhook delivered", logx.Int("status", resp.StatusCode))
	return nil
}

// SendLine posts a bare text line with the channel's default sender.
// It satisfies logx.LineSender for the ops log sink.
func (c *Client) SendLine(ctx context.Context, text string) error {
	return c.Send(ctx, transport.Message{Body: text})
}
