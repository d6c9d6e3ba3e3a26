package providers

import (
	"context"
	"fmt"
	"os"

	"tubecast/internal/pkg/podcasttools"
	"tubecast/internal/pkg/tts"
)

// audioSynthesizer pkg/tts 中各客户端的公共形态
type audioSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// VoiceMap 音色偏好到后端音色 ID 的映射，mixed 使用 Mixed（为空时退回 Female）
type VoiceMap struct {
	Male   string
	Female string
	Mixed  string
}

func (m VoiceMap) resolve(v podcasttools.Voice) string {
	switch v {
	case podcasttools.VoiceMale:
		return m.Male
	case podcasttools.VoiceFemale:
		return m.Female
	default:
		if m.Mixed != "" {
			return m.Mixed
		}
		return m.Female
	}
}

// synthesizeToFile 合成并写入 outputPath
func synthesizeToFile(ctx context.Context, s audioSynthesizer, text, voiceID, outputPath string) error {
	audio, err := s.Synthesize(ctx, text, voiceID)
	if err != nil {
		return err
	}
	if len(audio) == 0 {
		return fmt.Errorf("tts returned empty audio")
	}
	return os.WriteFile(outputPath, audio, 0o644)
}

// ByteDanceTTSProvider 字节跳动 TTS 提供者（使用 pkg/tts 的 Client）
// 实现了 podcasttools.TTSProvider 接口，不支持停顿标记
type ByteDanceTTSProvider struct {
	client *tts.Client
	voices VoiceMap
}

// NewByteDanceTTSProvider 创建基于火山引擎 TTS 的提供者
func NewByteDanceTTSProvider(client *tts.Client, voices VoiceMap) *ByteDanceTTSProvider {
	return &ByteDanceTTSProvider{client: client, voices: voices}
}

// Synthesize 合成语音并写入 outputPath
func (p *ByteDanceTTSProvider) Synthesize(ctx context.Context, text string, voice podcasttools.Voice, outputPath string) error {
	if p.client == nil {
		return fmt.Errorf("TTS client is required")
	}
	return synthesizeToFile(ctx, p.client, text, p.voices.resolve(voice), outputPath)
}

// ElevenLabsTTSProvider ElevenLabs 提供者，支持 <break> 停顿
// 实现了 podcasttools.TTSProvider 与 podcasttools.PauseTagger 接口
type ElevenLabsTTSProvider struct {
	client *tts.ElevenLabsClient
	voices VoiceMap
}

// NewElevenLabsTTSProvider 创建 ElevenLabs 提供者
func NewElevenLabsTTSProvider(client *tts.ElevenLabsClient, voices VoiceMap) *ElevenLabsTTSProvider {
	return &ElevenLabsTTSProvider{client: client, voices: voices}
}

// Synthesize 合成语音并写入 outputPath
func (p *ElevenLabsTTSProvider) Synthesize(ctx context.Context, text string, voice podcasttools.Voice, outputPath string) error {
	if p.client == nil {
		return fmt.Errorf("elevenlabs client is required")
	}
	return synthesizeToFile(ctx, p.client, text, p.voices.resolve(voice), outputPath)
}

// PauseTag 返回 ElevenLabs 的停顿标记
func (p *ElevenLabsTTSProvider) PauseTag() string {
	return tts.ElevenLabsBreakTag
}
