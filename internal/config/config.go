package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Model      ModelConfig      `mapstructure:"model"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Doubao     DoubaoConfig     `mapstructure:"doubao"`
	Qwen       QwenConfig       `mapstructure:"qwen"`
	Pexels     PexelsConfig     `mapstructure:"pexels"`
	Generation GenerationConfig `mapstructure:"generation"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Log        LogConfig        `mapstructure:"log"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type ModelConfig struct {
	Provider string `mapstructure:"provider"` // openai / doubao / qwen
}

type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DoubaoConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type QwenConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Temperature  float32       `mapstructure:"temperature"`
	TopP         float32       `mapstructure:"top_p"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DebugRequest bool          `mapstructure:"debug_request"`
}

type PexelsConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GenerationConfig 生成管线的策略参数
type GenerationConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`     // 大纲生成最大尝试次数
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`    // 首次重试等待时间，之后指数翻倍
	EnrichmentDelay time.Duration `mapstructure:"enrichment_delay"` // 每次图片搜索之间的间隔
	Timeout         time.Duration `mapstructure:"timeout"`          // 单次请求的整体超时
	Subtitle        string        `mapstructure:"subtitle"`         // 标题页副标题
	OutlinePrompt   string        `mapstructure:"outline_prompt"`   // 可选：覆盖默认的大纲提示词模板
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"`
	DataDir   string `mapstructure:"data_dir"`
	CacheSize int    `mapstructure:"cache_size"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DECK")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// 配置文件优先，未设置时回落到环境变量
	if cfg.OpenAI.APIKey == "" {
		if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
			cfg.OpenAI.APIKey = apiKey
		}
	}
	if cfg.Doubao.APIKey == "" {
		if apiKey := os.Getenv("ARK_API_KEY"); apiKey != "" {
			cfg.Doubao.APIKey = apiKey
		}
	}
	if cfg.Qwen.APIKey == "" {
		if apiKey := os.Getenv("DASHSCOPE_API_KEY"); apiKey != "" {
			cfg.Qwen.APIKey = apiKey
		}
	}
	if cfg.Pexels.APIKey == "" {
		if apiKey := os.Getenv("PEXELS_API_KEY"); apiKey != "" {
			cfg.Pexels.APIKey = apiKey
		}
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.Generation.MaxAttempts <= 0 {
		c.Generation.MaxAttempts = 3
	}
	if c.Generation.RetryBackoff <= 0 {
		c.Generation.RetryBackoff = time.Second
	}
	if c.Generation.EnrichmentDelay <= 0 {
		c.Generation.EnrichmentDelay = 500 * time.Millisecond
	}
	if c.Generation.Timeout <= 0 {
		c.Generation.Timeout = 3 * time.Minute
	}
	if c.Generation.Subtitle == "" {
		c.Generation.Subtitle = "Generated by DeckCraft"
	}
	if c.Pexels.BaseURL == "" {
		c.Pexels.BaseURL = "https://api.pexels.com/v1"
	}
	if c.Pexels.Timeout <= 0 {
		c.Pexels.Timeout = 15 * time.Second
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "./data"
	}
	if c.Storage.CacheSize <= 0 {
		c.Storage.CacheSize = 50
	}
}

func Get() *Config {
	return cfg
}
