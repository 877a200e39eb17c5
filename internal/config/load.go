package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	env "github.com/caarlos0/env/v11"
	yaml "go.yaml.in/yaml/v3"
)

// Load reads, strictly decodes, env-overlays and validates a config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := parse(path, b)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(path string, b []byte) (*Config, error) {
	jb, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}
	return &cfg, nil
}

// coerceToJSONBytes converts YAML config to JSON bytes so we can re-use
// the strict JSON decoder (DisallowUnknownFields) for both formats.
func coerceToJSONBytes(path string, data []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return data, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}

	v = normalizeYAML(v)

	j, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yaml->json marshal: %w", err)
	}
	return j, nil
}

// normalizeYAML ensures all map keys are strings so the result can be JSON-marshaled.
func normalizeYAML(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[k] = normalizeYAML(v)
		}
		return m
	case []any:
		for i := range x {
			x[i] = normalizeYAML(x[i])
		}
		return x
	default:
		return in
	}
}

// envOverrides are the secrets injected from the process environment.
// Names match what the original deployment used.
type envOverrides struct {
	GeneralToken  string `env:"GENERAL_TOKEN"`
	ActivityToken string `env:"ACTIVITY_TOKEN"`
	GovToken      string `env:"GOV_TOKEN"`
	WorkToken     string `env:"WORK_TOKEN"`
	OpsToken      string `env:"OPS_TOKEN"`
	TelegramToken string `env:"TELEGRAM_TOKEN"`
}

func applyEnv(cfg *Config) error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	setToken := func(ch *ChannelConfig, tok string) {
		if tok != "" && ch.Webhook != nil {
			ch.Webhook.Token = tok
		}
	}
	setToken(&cfg.Channels.General, ov.GeneralToken)
	setToken(&cfg.Channels.Activity, ov.ActivityToken)
	setToken(&cfg.Channels.Governance, ov.GovToken)
	setToken(&cfg.Channels.Work, ov.WorkToken)
	if ov.OpsToken != "" {
		cfg.Logging.Webhook.Token = ov.OpsToken
	}
	if ov.TelegramToken != "" {
		if cfg.Telegram == nil {
			cfg.Telegram = &TelegramConfig{}
		}
		cfg.Telegram.Token = ov.TelegramToken
	}
	return nil
}

// Validate checks cross-field constraints after env overlay.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	chans := map[string]ChannelConfig{
		"general":    cfg.Channels.General,
		"activity":   cfg.Channels.Activity,
		"governance": cfg.Channels.Governance,
		"work":       cfg.Channels.Work,
	}
	for name, ch := range chans {
		switch {
		case ch.Webhook == nil && ch.Telegram == nil:
			return fmt.Errorf("channels.%s: a webhook or telegram transport is required", name)
		case ch.Webhook != nil && ch.Telegram != nil:
			return fmt.Errorf("channels.%s: webhook and telegram are mutually exclusive", name)
		case ch.Webhook != nil && (ch.Webhook.ID == "" || ch.Webhook.Token == ""):
			return fmt.Errorf("channels.%s: webhook id and token are required", name)
		case ch.Telegram != nil && ch.Telegram.ChatID == 0:
			return fmt.Errorf("channels.%s: telegram chat_id is required", name)
		}
		if ch.Telegram != nil && (cfg.Telegram == nil || cfg.Telegram.Token == "") {
			return fmt.Errorf("channels.%s: telegram transport needs telegram.token", name)
		}
	}
	if cfg.Logging.Webhook.Enabled && (cfg.Logging.Webhook.ID == "" || cfg.Logging.Webhook.Token == "") {
		return errors.New("logging.webhook: id and token are required when enabled")
	}
	if _, err := ParseDurationField("identity.busy_timeout", cfg.Identity.BusyTimeout); err != nil {
		return err
	}
	if cfg.Announce.Enabled && strings.TrimSpace(cfg.Announce.Schedule) == "" {
		return errors.New("announce.schedule is required when enabled")
	}
	return nil
}
