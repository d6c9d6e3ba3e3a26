package podcasttools

import (
	"errors"
	"fmt"
)

var (
	// ErrTranscriptUnavailable 视频不存在、没有字幕或字幕为空
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	// ErrGenerationFailed 模型调用失败或返回空内容
	ErrGenerationFailed = errors.New("content generation failed")
	// ErrTitleGenerationFailed 标题生成失败，只用于日志，不会中断流水线
	ErrTitleGenerationFailed = errors.New("title generation failed")
	// ErrAudioRenderFailed 重试耗尽后仍未得到音频
	ErrAudioRenderFailed = errors.New("audio render failed")
	// ErrArtifactWriteFailed 文本产物写入失败
	ErrArtifactWriteFailed = errors.New("artifact write failed")
)

// GenerationError 内容生成失败
type GenerationError struct {
	Mode Mode
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Mode, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// AudioRenderError 语音合成重试耗尽
type AudioRenderError struct {
	Attempts  int
	LastError error
}

func (e *AudioRenderError) Error() string {
	return fmt.Sprintf("audio render failed after %d attempt(s): %v", e.Attempts, e.LastError)
}

func (e *AudioRenderError) Unwrap() error { return e.LastError }

func (e *AudioRenderError) Is(target error) bool { return target == ErrAudioRenderFailed }
