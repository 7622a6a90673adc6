package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server   ServerConfig
	Telegram TelegramConfig
	Render   RenderConfig
	Log      LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	var raw rawConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	server, err := loadServerConfig(raw.Port)
	if err != nil {
		return nil, err
	}

	render, err := raw.Render.normalize()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Telegram: TelegramConfig{
			Token:      strings.TrimSpace(raw.Telegram.Token),
			WebhookURL: strings.TrimRight(strings.TrimSpace(raw.Telegram.WebhookURL), "/"),
			Timeout:    raw.Telegram.Timeout,
			Debug:      raw.Telegram.Debug,
		},
		Render: render,
		Log:    raw.Log,
	}, nil
}

type rawConfig struct {
	Port     string `env:"PORT" envDefault:"8443"`
	Telegram TelegramConfig
	Render   RenderConfig
	Log      LogConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(port string) (ServerConfig, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8443"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8443" 或 "127.0.0.1:8443"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// TelegramConfig 描述 Bot 接入配置。WebhookURL 为空时使用长轮询。
type TelegramConfig struct {
	Token      string `env:"BOT_TOKEN"`
	WebhookURL string `env:"WEBHOOK_URL"`
	Timeout    int    `env:"POLL_TIMEOUT" envDefault:"60"`
	Debug      bool   `env:"BOT_DEBUG" envDefault:"false"`
}

// Enabled reports whether a bot token was provided.
func (c TelegramConfig) Enabled() bool {
	return c.Token != ""
}

// Webhook reports whether updates arrive through the webhook route.
func (c TelegramConfig) Webhook() bool {
	return c.WebhookURL != ""
}

// WebhookPath is the route Telegram posts updates to.
func (c TelegramConfig) WebhookPath() string {
	return "/telegram/" + c.Token
}

// RenderConfig 描述渲染相关的资源目录。
type RenderConfig struct {
	FontDir     string `env:"FONT_DIR" envDefault:"fonts"`
	TemplateDir string `env:"TEMPLATE_DIR" envDefault:"templates"`
	ArtifactDir string `env:"ARTIFACT_DIR"`
	CatalogFile string `env:"CATALOG_FILE"`
	JPEGQuality int    `env:"JPEG_QUALITY" envDefault:"90"`
}

func (c RenderConfig) normalize() (RenderConfig, error) {
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return RenderConfig{}, fmt.Errorf("invalid JPEG_QUALITY value: %d", c.JPEGQuality)
	}
	c.FontDir = strings.TrimSpace(c.FontDir)
	c.TemplateDir = strings.TrimSpace(c.TemplateDir)
	c.ArtifactDir = strings.TrimSpace(c.ArtifactDir)
	c.CatalogFile = strings.TrimSpace(c.CatalogFile)
	return c, nil
}

// LogConfig 日志级别与输出格式（json 或 console）。
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}
