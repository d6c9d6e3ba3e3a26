package podcasttools

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultRenderAttempts = 3
	defaultRenderBackoff  = 2 * time.Second
	maxRenderJitter       = time.Second
)

// AudioRenderer 调用 TTSProvider 合成音频，带指数退避重试
//
// 每次尝试先写入目标目录下的临时文件，校验存在且非空后再 rename 到目标路径；
// 失败时目标路径不会被创建或覆盖
type AudioRenderer struct {
	tts         TTSProvider
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	jitter      func() time.Duration
}

// RendererOption 配置 AudioRenderer
type RendererOption func(*AudioRenderer)

// WithMaxAttempts 设置最大尝试次数
func WithMaxAttempts(n int) RendererOption {
	return func(r *AudioRenderer) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithBaseDelay 设置退避基数，第 i 次失败后等待 base*2^i + jitter
func WithBaseDelay(d time.Duration) RendererOption {
	return func(r *AudioRenderer) {
		if d > 0 {
			r.baseDelay = d
		}
	}
}

// WithSleeper 替换等待函数（测试用）
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) RendererOption {
	return func(r *AudioRenderer) {
		if fn != nil {
			r.sleep = fn
		}
	}
}

// WithJitter 替换抖动函数（测试用）
func WithJitter(fn func() time.Duration) RendererOption {
	return func(r *AudioRenderer) {
		if fn != nil {
			r.jitter = fn
		}
	}
}

// NewAudioRenderer 创建音频渲染器
func NewAudioRenderer(tts TTSProvider, opts ...RendererOption) *AudioRenderer {
	r := &AudioRenderer{
		tts:         tts,
		maxAttempts: defaultRenderAttempts,
		baseDelay:   defaultRenderBackoff,
		sleep:       sleepContext,
		jitter:      randomJitter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render 合成 text 并发布到 destPath，成功返回 destPath
// 重试耗尽返回 *AudioRenderError
func (r *AudioRenderer) Render(ctx context.Context, text, destPath string, voice Voice) (string, error) {
	if r.tts == nil {
		return "", &AudioRenderError{LastError: errors.New("tts provider is required")}
	}
	if strings.TrimSpace(text) == "" {
		return "", &AudioRenderError{LastError: errors.New("speech text is empty")}
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", &AudioRenderError{LastError: fmt.Errorf("create output dir: %w", err)}
	}

	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		lastErr = r.attempt(ctx, text, destPath, voice)
		if lastErr == nil {
			log.Info().
				Str("path", destPath).
				Int("attempt", attempt+1).
				Msg("audio rendered")
			return destPath, nil
		}

		if attempt == r.maxAttempts-1 {
			break
		}
		delay := r.baseDelay*time.Duration(1<<attempt) + r.jitter()
		log.Warn().
			Err(lastErr).
			Int("attempt", attempt+1).
			Int("max_attempts", r.maxAttempts).
			Dur("delay", delay).
			Msg("audio render failed, retrying")
		if err := r.sleep(ctx, delay); err != nil {
			return "", &AudioRenderError{Attempts: attempt + 1, LastError: errors.Join(lastErr, err)}
		}
	}

	log.Error().Err(lastErr).Int("attempts", r.maxAttempts).Msg("audio render failed")
	return "", &AudioRenderError{Attempts: r.maxAttempts, LastError: lastErr}
}

func (r *AudioRenderer) attempt(ctx context.Context, text, destPath string, voice Voice) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".render-*.mp3")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := r.tts.Synthesize(ctx, text, voice, tmpPath); err != nil {
		return err
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return fmt.Errorf("audio file missing: %w", err)
	}
	if info.Size() == 0 {
		return errors.New("audio file is empty")
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("publish audio file: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomJitter() time.Duration {
	return time.Duration(rand.Int64N(int64(maxRenderJitter)))
}
