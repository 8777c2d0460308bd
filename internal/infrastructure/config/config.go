package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Auth     AuthConfig     `yaml:"auth"`

	mu sync.RWMutex
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort string `yaml:"http_port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Path SQLite 数据库文件路径，留空表示使用 ~/.listwise/listwise.db
	Path string `yaml:"path"`
}

// OpenAIConfig 模型服务配置
// 该段支持热更新：配置文件变更后新值对后续请求生效
type OpenAIConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	ChatModel  string `yaml:"chat_model"`
	ImageModel string `yaml:"image_model"`
	// Moderation 是否在调用解释器前做内容审核
	Moderation bool `yaml:"moderation"`
	// PromptTokenBudget 解释器请求的 token 预算，超出时从最旧的历史轮次开始丢弃
	PromptTokenBudget int `yaml:"prompt_token_budget"`
}

// AuthConfig 身份校验配置
type AuthConfig struct {
	// Secret 签名令牌的 HMAC 密钥
	Secret string `yaml:"secret"`
}

// NewConfig 创建配置（默认值 + 配置文件 + 环境变量，优先级递增）
func NewConfig() *Config {
	cfg := defaultConfig()

	if path := ConfigFilePath(); path != "" {
		// 配置文件不存在时静默使用默认值
		_ = cfg.loadFile(path)
	}
	cfg.applyEnv()

	return cfg
}

// defaultConfig 默认配置
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: ":8990",
		},
		Database: DatabaseConfig{
			Path: "",
		},
		OpenAI: OpenAIConfig{
			BaseURL:           "https://api.openai.com/v1",
			ChatModel:         "gpt-3.5-turbo-0125",
			ImageModel:        "dall-e-3",
			Moderation:        true,
			PromptTokenBudget: 4096,
		},
	}
}

// ConfigFilePath 配置文件路径
// 优先使用 LISTWISE_CONFIG 环境变量，否则为 ~/.listwise/config.yaml
func ConfigFilePath() string {
	if path := os.Getenv("LISTWISE_CONFIG"); path != "" {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".listwise", "config.yaml")
}

// loadFile 从 YAML 文件加载配置
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnv 环境变量覆盖
func (c *Config) applyEnv() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv("LISTWISE_HTTP_PORT"); v != "" {
		c.Server.HTTPPort = v
	}
	if v := os.Getenv("LISTWISE_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("LISTWISE_AUTH_SECRET"); v != "" {
		c.Auth.Secret = v
	}
}

// OpenAISnapshot 获取模型服务配置的当前快照（热更新安全）
func (c *Config) OpenAISnapshot() OpenAIConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.OpenAI
}

// Reload 重新读取配置文件并套用环境变量覆盖
// 只有 OpenAI 段在运行期被消费方重读，其余段的变更需要重启生效
func (c *Config) Reload() error {
	path := ConfigFilePath()
	if path == "" {
		return nil
	}
	if err := c.loadFile(path); err != nil {
		return err
	}
	c.applyEnv()
	return nil
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewDatabaseConfig 创建数据库配置
func NewDatabaseConfig(cfg *Config) *DatabaseConfig {
	return &cfg.Database
}

// NewAuthConfig 创建身份校验配置
func NewAuthConfig(cfg *Config) *AuthConfig {
	return &cfg.Auth
}
