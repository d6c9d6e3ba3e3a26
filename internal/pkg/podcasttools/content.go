package podcasttools

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

// ContentTransformer 内容生成器，把字幕全文转换为摘要或双人对话
//
// 只负责组装 prompt 并调用注入的 LLMProvider，模型调用只做一次，不重试
type ContentTransformer struct {
	llm LLMProvider
}

// NewContentTransformer 创建内容生成器
func NewContentTransformer(llm LLMProvider) *ContentTransformer {
	return &ContentTransformer{llm: llm}
}

// Transform 按模式生成内容
//
// Args:
//   - transcript: 字幕全文
//   - mode: ModeSummary 或 ModeConversation
//   - voice: 对话模式下决定主持人名字，摘要模式忽略
//
// Returns:
//   - text: 生成的文本（已去除首尾空白）
//   - err: *GenerationError，可用 errors.Is(err, ErrGenerationFailed) 判断
func (t *ContentTransformer) Transform(ctx context.Context, transcript string, mode Mode, voice Voice) (string, error) {
	if t.llm == nil {
		return "", &GenerationError{Mode: mode, Err: errors.New("llm provider is required")}
	}
	if strings.TrimSpace(transcript) == "" {
		return "", &GenerationError{Mode: mode, Err: errors.New("transcript is empty")}
	}

	system, user := contentPrompts(mode, transcript, voice)
	text, err := t.llm.Invoke(ctx, system, user)
	if err != nil {
		return "", &GenerationError{Mode: mode, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &GenerationError{Mode: mode, Err: errors.New("empty response from model")}
	}

	log.Debug().
		Str("mode", mode.String()).
		Int("transcript_chars", len(transcript)).
		Int("output_chars", len(text)).
		Msg("content generated")
	return text, nil
}
