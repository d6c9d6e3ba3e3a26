package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"tubecast/internal/ai/chain"
	"tubecast/internal/config"
	"tubecast/internal/pkg/ark"
	"tubecast/internal/pkg/cache"
	"tubecast/internal/pkg/ffmpeg"
	"tubecast/internal/pkg/mongodb"
	"tubecast/internal/pkg/podcasttools"
	"tubecast/internal/pkg/podcasttools/providers"
	"tubecast/internal/pkg/storage"
	"tubecast/internal/pkg/storagefactory"
	"tubecast/internal/pkg/tts"
	"tubecast/internal/pkg/youtube"
	runrepo "tubecast/internal/repository/run"
	pipelinesvc "tubecast/internal/service/pipeline"
)

// App 按配置组装好的流水线及其外部连接
type App struct {
	Pipeline *pipelinesvc.Service
	Storage  storage.Storage
	History  runrepo.RunRepository

	mongo   *mongodb.Client
	redis   *cache.RedisCache
	closers []func() error
}

// New 根据配置创建流水线服务
// Mongo/Redis 连接失败时降级运行（不记录历史 / 不缓存字幕），与 HTTP 服务的可选依赖处理一致
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	if cfg.Redis.Addr != "" && cfg.Captions.CacheTTL > 0 {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, captions cache disabled")
		} else {
			app.redis = rc
			app.closers = append(app.closers, rc.Close)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	llm, err := NewLLMProvider(ctx, &cfg.AI)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init llm provider: %w", err)
	}

	captions, err := app.newCaptionsProvider(&cfg.Captions)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init captions provider: %w", err)
	}

	speech, err := NewTTSProvider(&cfg.TTS)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init tts provider: %w", err)
	}

	var sanitizerOpts []podcasttools.SanitizerOption
	if tagger, ok := speech.(podcasttools.PauseTagger); ok {
		sanitizerOpts = append(sanitizerOpts, podcasttools.WithPauseTag(tagger.PauseTag()))
	}

	var rendererOpts []podcasttools.RendererOption
	if cfg.Pipeline.RenderAttempts > 0 {
		rendererOpts = append(rendererOpts, podcasttools.WithMaxAttempts(cfg.Pipeline.RenderAttempts))
	}
	if cfg.Pipeline.RenderBackoff > 0 {
		rendererOpts = append(rendererOpts, podcasttools.WithBaseDelay(cfg.Pipeline.RenderBackoff))
	}

	deps := &pipelinesvc.Deps{
		Transcripts: podcasttools.NewTranscriptFetcher(captions),
		Transformer: podcasttools.NewContentTransformer(llm),
		Titles:      podcasttools.NewTitleGenerator(llm),
		Sanitizer:   podcasttools.NewSpeechSanitizer(sanitizerOpts...),
		Renderer:    podcasttools.NewAudioRenderer(speech, rendererOpts...),
		OutputDir:   cfg.Pipeline.OutputDir,
	}

	store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	app.Storage = store

	if err := app.openHistory(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}

	voice, _ := podcasttools.ParseVoice(cfg.Pipeline.DefaultVoice)
	opts := []pipelinesvc.Option{pipelinesvc.WithDefaultVoice(voice)}
	if store != nil {
		opts = append(opts, pipelinesvc.WithStorage(store))
	}
	if app.History != nil {
		opts = append(opts, pipelinesvc.WithHistory(app.History))
	}
	if cfg.Pipeline.ProbeAudio {
		prober, err := ffmpeg.NewProber(cfg.Pipeline.FFprobePath)
		if err != nil {
			log.Warn().Err(err).Msg("audio duration probing disabled")
		} else {
			opts = append(opts, pipelinesvc.WithAudioProber(prober))
		}
	}

	svc, err := pipelinesvc.NewService(deps, opts...)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Pipeline = svc

	log.Info().
		Str("ai_provider", cfg.AI.Provider).
		Str("captions_provider", cfg.Captions.Provider).
		Str("tts_provider", cfg.TTS.Provider).
		Str("storage", cfg.Storage.Type).
		Str("history", cfg.History.Driver).
		Msg("pipeline initialized")
	return app, nil
}

// Ping 检查外部依赖连通性，用于就绪检查
func (a *App) Ping(ctx context.Context) error {
	if a.mongo != nil {
		if err := a.mongo.Ping(ctx); err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close 关闭所有外部连接
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewLLMProvider 按 ai.provider 创建模型调用能力
// volcengine 直接使用 Ark SDK，其余走 eino ChatModel
func NewLLMProvider(ctx context.Context, cfg *config.AIConfig) (podcasttools.LLMProvider, error) {
	if cfg.Provider == "volcengine" {
		client, err := ark.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return providers.NewArkProvider(client), nil
	}

	c, err := chain.NewGenerateChain(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return providers.NewEinoProvider(c), nil
}

func (a *App) newCaptionsProvider(cfg *config.CaptionsConfig) (podcasttools.CaptionsProvider, error) {
	var p podcasttools.CaptionsProvider
	switch cfg.Provider {
	case "rapidapi":
		language := "en"
		if len(cfg.Languages) > 0 {
			language = cfg.Languages[0]
		}
		client, err := youtube.NewRapidAPIClient(youtube.RapidAPIConfig{
			APIKey:   cfg.RapidAPI.Key,
			Host:     cfg.RapidAPI.Host,
			Language: language,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		p = providers.NewYouTubeCaptionsProvider(client)
	case "timedtext", "":
		p = providers.NewYouTubeCaptionsProvider(youtube.NewTimedTextClient(youtube.TimedTextConfig{
			Languages: cfg.Languages,
			Timeout:   cfg.Timeout,
		}))
	default:
		return nil, fmt.Errorf("unsupported captions provider: %s", cfg.Provider)
	}

	if a.redis != nil {
		p = providers.NewCachedCaptionsProvider(p, a.redis, cfg.CacheTTL)
	}
	return p, nil
}

// NewTTSProvider 按 tts.provider 创建语音合成后端
func NewTTSProvider(cfg *config.TTSConfig) (podcasttools.TTSProvider, error) {
	switch cfg.Provider {
	case "elevenlabs":
		client, err := tts.NewElevenLabsClient(tts.ElevenLabsConfig{
			APIURL:          cfg.ElevenLabs.BaseURL,
			APIKey:          cfg.ElevenLabs.APIKey,
			ModelID:         cfg.ElevenLabs.ModelID,
			Stability:       cfg.ElevenLabs.Stability,
			SimilarityBoost: cfg.ElevenLabs.Similarity,
			Timeout:         cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return providers.NewElevenLabsTTSProvider(client, providers.VoiceMap{
			Male:   cfg.ElevenLabs.MaleVoice,
			Female: cfg.ElevenLabs.FemaleVoice,
		}), nil
	case "volcengine", "":
		client, err := tts.NewClient(tts.Config{
			AccessToken: cfg.Volcengine.AccessKey,
			AppID:       cfg.Volcengine.AppID,
			Cluster:     cfg.Volcengine.Cluster,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return providers.NewByteDanceTTSProvider(client, providers.VoiceMap{
			Male:   cfg.Volcengine.MaleVoice,
			Female: cfg.Volcengine.FemaleVoice,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported tts provider: %s", cfg.Provider)
	}
}

// OpenHistory 只打开运行记录存储，供不需要执行流水线的命令使用
func OpenHistory(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}
	if err := app.openHistory(ctx, cfg); err != nil {
		return nil, err
	}
	if app.History == nil {
		app.Close()
		return nil, pipelinesvc.ErrHistoryDisabled
	}
	return app, nil
}

func (a *App) openHistory(ctx context.Context, cfg *config.Config) error {
	switch cfg.History.Driver {
	case "mongo":
		client, err := mongodb.New(ctx, &cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, run history disabled")
			return nil
		}
		a.mongo = client
		a.closers = append(a.closers, func() error { return client.Close(context.Background()) })
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

		if err := mongodb.EnsureIndexes(ctx, client.Database()); err != nil {
			log.Warn().Err(err).Msg("failed to ensure indexes")
		}
		a.History = runrepo.NewMongoRepo(client.Database())
	case "sqlite":
		repo, err := runrepo.OpenSQLite(cfg.History.SQLitePath)
		if err != nil {
			return fmt.Errorf("open run history: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		a.History = repo
	}
	return nil
}
