package podcasttools

import (
	"context"
)

// LLMProvider 定义了调用大模型的接口
// 具体的「如何调用大模型」由调用方通过实现此接口注入，方便单测和替换实现
// 内容生成与标题生成共用同一个 provider
type LLMProvider interface {
	// Invoke 以系统指令 + 用户内容调用一次模型，返回生成文本
	Invoke(ctx context.Context, systemPrompt, userContent string) (string, error)
}

// Caption 单条字幕
type Caption struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`    // 秒
	Duration float64 `json:"duration"` // 秒
}

// CaptionsProvider 字幕获取接口
type CaptionsProvider interface {
	// GetCaptions 获取视频字幕，顺序不作保证
	GetCaptions(ctx context.Context, videoID string) ([]Caption, error)
}

// TTSProvider 语音合成接口
type TTSProvider interface {
	// Synthesize 合成语音并写入 outputPath（MP3）
	Synthesize(ctx context.Context, text string, voice Voice, outputPath string) error
}

// PauseTagger 支持停顿标记的 TTS 后端实现此接口
type PauseTagger interface {
	// PauseTag 返回后端识别的停顿标记，例如 <break time="1.0s" />
	PauseTag() string
}
