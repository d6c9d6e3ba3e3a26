package providers

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"tubecast/internal/pkg/cache"
	"tubecast/internal/pkg/podcasttools"
	"tubecast/internal/pkg/youtube"
)

// youtubeClient pkg/youtube 中字幕客户端的公共形态
type youtubeClient interface {
	GetCaptions(ctx context.Context, videoID string) ([]youtube.Caption, error)
}

// YouTubeCaptionsProvider 把 pkg/youtube 的客户端适配为 podcasttools.CaptionsProvider
type YouTubeCaptionsProvider struct {
	client youtubeClient
}

// NewYouTubeCaptionsProvider 创建字幕提供者（TimedTextClient 或 RapidAPIClient）
func NewYouTubeCaptionsProvider(client youtubeClient) *YouTubeCaptionsProvider {
	return &YouTubeCaptionsProvider{client: client}
}

// GetCaptions 获取字幕
func (p *YouTubeCaptionsProvider) GetCaptions(ctx context.Context, videoID string) ([]podcasttools.Caption, error) {
	captions, err := p.client.GetCaptions(ctx, videoID)
	if err != nil {
		return nil, err
	}
	out := make([]podcasttools.Caption, len(captions))
	for i, c := range captions {
		out[i] = podcasttools.Caption{Text: c.Text, Start: c.Start, Duration: c.Duration}
	}
	return out, nil
}

// Cache 字幕缓存所需的最小接口，由 cache.RedisCache 实现
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// CachedCaptionsProvider 带缓存的字幕提供者
// 缓存读写失败只记录日志，不影响结果
type CachedCaptionsProvider struct {
	next  podcasttools.CaptionsProvider
	cache Cache
	ttl   time.Duration
}

// NewCachedCaptionsProvider 创建带缓存的字幕提供者，ttl <= 0 时使用 cache.CaptionsCacheTTL
func NewCachedCaptionsProvider(next podcasttools.CaptionsProvider, c Cache, ttl time.Duration) *CachedCaptionsProvider {
	if ttl <= 0 {
		ttl = cache.CaptionsCacheTTL
	}
	return &CachedCaptionsProvider{next: next, cache: c, ttl: ttl}
}

// GetCaptions 先查缓存，未命中再请求上游并回填
func (p *CachedCaptionsProvider) GetCaptions(ctx context.Context, videoID string) ([]podcasttools.Caption, error) {
	key := cache.CaptionsCacheKey(videoID)

	var cached []podcasttools.Caption
	err := p.cache.Get(ctx, key, &cached)
	switch {
	case err == nil && len(cached) > 0:
		log.Debug().Str("video_id", videoID).Msg("captions cache hit")
		return cached, nil
	case err != nil && !errors.Is(err, cache.ErrCacheMiss):
		log.Warn().Err(err).Str("video_id", videoID).Msg("captions cache read failed")
	}

	captions, err := p.next.GetCaptions(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if len(captions) > 0 {
		if err := p.cache.Set(ctx, key, captions, p.ttl); err != nil {
			log.Warn().Err(err).Str("video_id", videoID).Msg("captions cache write failed")
		}
	}
	return captions, nil
}
