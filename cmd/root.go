package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tubecast/internal/config"
	"tubecast/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tubecast",
	Short: "Tubecast - YouTube video to summary and podcast",
	Long: `Tubecast turns a YouTube video into a written summary or a
two-host podcast episode. It fetches the transcript, asks an LLM to
summarize or rewrite it as a dialogue, and renders the dialogue to MP3.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.tubecast")
	}

	// 环境变量设置
	viper.SetEnvPrefix("TUBECAST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	// 反序列化到结构体
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	// 播客生成是同步请求，写超时要覆盖整条流水线
	viper.SetDefault("server.write_timeout", "10m")

	// AI
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.model", "gpt-4o-mini")
	viper.SetDefault("ai.timeout", "2m")
	viper.SetDefault("ai.options.temperature", 0.7)
	viper.SetDefault("ai.options.max_tokens", 4096)
	viper.SetDefault("ai.options.top_p", 1.0)

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.time_format", "RFC3339")

	// MongoDB / Redis 默认不连接
	viper.SetDefault("mongo.uri", "")
	viper.SetDefault("mongo.database", "tubecast")
	viper.SetDefault("mongo.max_pool_size", 100)
	viper.SetDefault("mongo.min_pool_size", 10)
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)

	// Storage
	viper.SetDefault("storage.type", "")

	// Captions
	viper.SetDefault("captions.provider", "timedtext")
	viper.SetDefault("captions.languages", []string{"en", "en-US", "en-GB"})
	viper.SetDefault("captions.timeout", "30s")
	viper.SetDefault("captions.cache_ttl", "24h")
	viper.SetDefault("captions.rapidapi.host", "youtube-transcriptor.p.rapidapi.com")

	// TTS
	viper.SetDefault("tts.provider", "volcengine")
	viper.SetDefault("tts.timeout", "60s")
	viper.SetDefault("tts.volcengine.cluster", "volcano_tts")
	viper.SetDefault("tts.volcengine.male_voice", "BV504_streaming")
	viper.SetDefault("tts.volcengine.female_voice", "BV503_streaming")
	viper.SetDefault("tts.elevenlabs.model_id", "eleven_multilingual_v2")
	viper.SetDefault("tts.elevenlabs.stability", 0.5)
	viper.SetDefault("tts.elevenlabs.similarity_boost", 0.75)

	// Pipeline
	viper.SetDefault("pipeline.output_dir", "./output")
	viper.SetDefault("pipeline.default_voice", "mixed")
	viper.SetDefault("pipeline.render_attempts", 3)
	viper.SetDefault("pipeline.render_backoff", "2s")
	viper.SetDefault("pipeline.probe_audio", false)

	// History
	viper.SetDefault("history.driver", "sqlite")
	viper.SetDefault("history.sqlite_path", "./data/tubecast.db")

	// Rate limit
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 5)
	viper.SetDefault("rate_limit.window", "10s")
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
