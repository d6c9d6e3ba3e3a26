package podcasttools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// TranscriptFetcher 获取字幕并拼接为纯文本
type TranscriptFetcher struct {
	provider CaptionsProvider
}

// NewTranscriptFetcher 创建字幕获取器
func NewTranscriptFetcher(provider CaptionsProvider) *TranscriptFetcher {
	return &TranscriptFetcher{provider: provider}
}

// Fetch 获取视频字幕全文
// 任何 provider 错误、零条字幕或拼接后为空都归为 ErrTranscriptUnavailable，不重试
func (f *TranscriptFetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	if f.provider == nil {
		return "", fmt.Errorf("captions provider is required")
	}
	captions, err := f.provider.GetCaptions(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptUnavailable, err)
	}
	text := JoinCaptions(captions)
	if text == "" {
		return "", fmt.Errorf("%w: video %s has no caption text", ErrTranscriptUnavailable, videoID)
	}
	return text, nil
}

// JoinCaptions 按开始时间排序（同一时间保持原顺序），以单个空格拼接非空文本
func JoinCaptions(captions []Caption) string {
	ordered := make([]Caption, len(captions))
	copy(ordered, captions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	parts := make([]string, 0, len(ordered))
	for _, c := range ordered {
		if t := strings.TrimSpace(c.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
