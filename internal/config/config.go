package config

import (
	"errors"
	"fmt"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	AI        AIConfig        `mapstructure:"ai"`
	Log       LogConfig       `mapstructure:"log"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Captions  CaptionsConfig  `mapstructure:"captions"`
	TTS       TTSConfig       `mapstructure:"tts"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	History   HistoryConfig   `mapstructure:"history"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig AI 服务配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"` // openai, azure, ark, volcengine
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Timeout  time.Duration   `mapstructure:"timeout"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // json, console, auto
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig 存储配置，Type 为空时不发布产物
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"` // 基础路径
	BaseURL  string `mapstructure:"base_url"`  // 基础URL（用于生成访问URL）
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
	PresignExpiry   int    `mapstructure:"presign_expiry"`    // 预签名URL过期时间（秒）
}

// CaptionsConfig 字幕获取配置
type CaptionsConfig struct {
	Provider  string         `mapstructure:"provider"` // timedtext, rapidapi
	Languages []string       `mapstructure:"languages"`
	Timeout   time.Duration  `mapstructure:"timeout"`
	CacheTTL  time.Duration  `mapstructure:"cache_ttl"` // 0 表示不缓存
	RapidAPI  RapidAPIConfig `mapstructure:"rapidapi"`
}

// RapidAPIConfig RapidAPI 字幕服务配置
type RapidAPIConfig struct {
	Key  string `mapstructure:"key"`
	Host string `mapstructure:"host"`
}

// TTSConfig 语音合成配置
type TTSConfig struct {
	Provider   string           `mapstructure:"provider"` // volcengine, elevenlabs
	Timeout    time.Duration    `mapstructure:"timeout"`
	Volcengine VolcengineConfig `mapstructure:"volcengine"`
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
}

// VolcengineConfig 火山引擎 TTS 配置
type VolcengineConfig struct {
	AppID       string `mapstructure:"app_id"`
	AccessKey   string `mapstructure:"access_key"`
	Cluster     string `mapstructure:"cluster"`
	MaleVoice   string `mapstructure:"male_voice"`
	FemaleVoice string `mapstructure:"female_voice"`
}

// ElevenLabsConfig ElevenLabs TTS 配置
type ElevenLabsConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	ModelID     string  `mapstructure:"model_id"`
	MaleVoice   string  `mapstructure:"male_voice"`
	FemaleVoice string  `mapstructure:"female_voice"`
	Stability   float64 `mapstructure:"stability"`
	Similarity  float64 `mapstructure:"similarity_boost"`
}

// PipelineConfig 生成流水线配置
type PipelineConfig struct {
	OutputDir      string        `mapstructure:"output_dir"`
	DefaultVoice   string        `mapstructure:"default_voice"`
	RenderAttempts int           `mapstructure:"render_attempts"`
	RenderBackoff  time.Duration `mapstructure:"render_backoff"`
	ProbeAudio     bool          `mapstructure:"probe_audio"`  // 用 ffprobe 记录音频时长
	FFprobePath    string        `mapstructure:"ffprobe_path"` // 为空时从 PATH 查找
}

// HistoryConfig 运行记录存储配置
type HistoryConfig struct {
	Driver     string `mapstructure:"driver"` // mongo, sqlite, none
	SQLitePath string `mapstructure:"sqlite_path"`
}

// RateLimitConfig 接口限流配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	return c.ValidatePipeline()
}

// ValidatePipeline 校验流水线相关配置（CLI 模式不需要 server 配置）
func (c *Config) ValidatePipeline() error {
	switch c.Captions.Provider {
	case "timedtext":
	case "rapidapi":
		if c.Captions.RapidAPI.Key == "" {
			return errors.New("captions.rapidapi.key is required for rapidapi provider")
		}
	default:
		return fmt.Errorf("unsupported captions provider: %q", c.Captions.Provider)
	}

	switch c.TTS.Provider {
	case "volcengine", "elevenlabs":
	default:
		return fmt.Errorf("unsupported tts provider: %q", c.TTS.Provider)
	}

	switch c.Storage.Type {
	case "", "local", "oss":
	default:
		return fmt.Errorf("unsupported storage type: %q", c.Storage.Type)
	}

	switch c.History.Driver {
	case "", "none", "mongo", "sqlite":
	default:
		return fmt.Errorf("unsupported history driver: %q", c.History.Driver)
	}

	switch c.Pipeline.DefaultVoice {
	case "", "male", "female", "mixed":
	default:
		return fmt.Errorf("invalid default voice: %q", c.Pipeline.DefaultVoice)
	}

	if c.Pipeline.OutputDir == "" {
		return errors.New("pipeline.output_dir is required")
	}
	if c.Pipeline.RenderAttempts < 0 {
		return errors.New("pipeline.render_attempts must not be negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("rate_limit requires positive requests and window")
	}
	return nil
}
