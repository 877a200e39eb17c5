package config

// Config is the full relay configuration. File format is YAML or JSON;
// unknown keys are rejected so typos fail at load, not at runtime.
//
// Secrets (webhook tokens, bot token) are usually left out of the file
// and injected from the environment: GENERAL_TOKEN, ACTIVITY_TOKEN,
// GOV_TOKEN, WORK_TOKEN, OPS_TOKEN, TELEGRAM_TOKEN.
type Config struct {
	Logging  LoggingConfig   `json:"logging"`
	Channels ChannelsConfig  `json:"channels"`
	Telegram *TelegramConfig `json:"telegram,omitempty"`
	Identity IdentityConfig  `json:"identity"`
	Announce AnnounceConfig  `json:"announce,omitempty"`
	Feed     FeedConfig      `json:"feed,omitempty"`
}

type LoggingConfig struct {
	Level   string         `json:"level"`
	Console bool           `json:"console"`
	File    LoggingFile    `json:"file,omitempty"`
	Webhook LoggingWebhook `json:"webhook,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// LoggingWebhook forwards WARN+ log lines to an ops webhook so
// operators notice dropped notifications without shell access.
type LoggingWebhook struct {
	Enabled    bool   `json:"enabled"`
	ID         string `json:"id,omitempty"`
	Token      string `json:"token,omitempty"`
	MinLevel   string `json:"min_level,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// ChannelsConfig holds the four fixed outbound channels plus shared
// presentation and throttling knobs.
type ChannelsConfig struct {
	// AvatarURL is the fixed sender avatar for synthesized messages
	// (the ECO globe).
	AvatarURL string `json:"avatar_url,omitempty"`

	// WebhookBase overrides the webhook API base URL (tests, proxies).
	WebhookBase string `json:"webhook_base,omitempty"`

	// RatePerSec caps outbound posts per webhook channel.
	RatePerSec float64 `json:"rate_per_sec,omitempty"`

	General    ChannelConfig `json:"general"`
	Activity   ChannelConfig `json:"activity"`
	Governance ChannelConfig `json:"governance"`
	Work       ChannelConfig `json:"work"`
}

// ChannelConfig selects exactly one transport for a channel.
type ChannelConfig struct {
	Webhook  *WebhookChannel  `json:"webhook,omitempty"`
	Telegram *TelegramChannel `json:"telegram,omitempty"`
}

type WebhookChannel struct {
	ID    string `json:"id"`
	Token string `json:"token,omitempty"`
}

type TelegramChannel struct {
	ChatID   int64 `json:"chat_id"`
	ThreadID int   `json:"thread_id,omitempty"`
}

// TelegramConfig carries the shared bot token for telegram channels.
type TelegramConfig struct {
	Token string `json:"token,omitempty"`
}

type IdentityConfig struct {
	// StorePath is the sqlite file holding account links.
	StorePath string `json:"store_path,omitempty"`
	// BusyTimeout is a Go duration string (e.g. "500ms").
	BusyTimeout string `json:"busy_timeout,omitempty"`
	// Members is the external member directory (id -> profile).
	Members []MemberConfig `json:"members,omitempty"`
}

type MemberConfig struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type AnnounceConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule,omitempty"`
}

type FeedConfig struct {
	Buffer int `json:"buffer,omitempty"`
}
