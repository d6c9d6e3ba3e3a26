package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultElevenLabsURL   = "https://api.elevenlabs.io/v1/text-to-speech"
	defaultElevenLabsModel = "eleven_multilingual_v2"
	elevenLabsMaxChunk     = 4500

	// ElevenLabsBreakTag 停顿标记，ElevenLabs 会把它渲染为 1 秒静音
	ElevenLabsBreakTag = `<break time="1.0s" />`
)

// ElevenLabsConfig ElevenLabs 配置
type ElevenLabsConfig struct {
	APIURL          string // 默认: https://api.elevenlabs.io/v1/text-to-speech
	APIKey          string // 必需
	ModelID         string
	Stability       float64
	SimilarityBoost float64
	Timeout         time.Duration
}

// ElevenLabsClient ElevenLabs 文本转语音客户端
type ElevenLabsClient struct {
	cfg        ElevenLabsConfig
	httpClient *http.Client
}

type elevenLabsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// NewElevenLabsClient 创建 ElevenLabs 客户端
func NewElevenLabsClient(cfg ElevenLabsConfig) (*ElevenLabsClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs api key is required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultElevenLabsURL
	}
	if cfg.ModelID == "" {
		cfg.ModelID = defaultElevenLabsModel
	}
	if cfg.Stability == 0 {
		cfg.Stability = 0.5
	}
	if cfg.SimilarityBoost == 0 {
		cfg.SimilarityBoost = 0.75
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ElevenLabsClient{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}, nil
}

// Synthesize 用指定 voiceID 合成文本，返回 MP3 数据
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if voiceID == "" {
		return nil, fmt.Errorf("voice id is required")
	}
	chunks := SplitText(text, elevenLabsMaxChunk)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("empty text")
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		data, err := c.synthesizeChunk(ctx, chunk, voiceID)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio.Write(data)
	}
	return audio.Bytes(), nil
}

func (c *ElevenLabsClient) synthesizeChunk(ctx context.Context, text, voiceID string) ([]byte, error) {
	payload, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: c.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       c.cfg.Stability,
			SimilarityBoost: c.cfg.SimilarityBoost,
		},
	})
	if err != nil {
		return nil, err
	}

	endpoint := c.cfg.APIURL + "/" + voiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read elevenlabs response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("voice_id", voiceID).
			Msg("elevenlabs synthesis failed")
		return nil, fmt.Errorf("elevenlabs request failed: status %d, body: %s", resp.StatusCode, truncate(body, 256))
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("elevenlabs returned empty audio")
	}
	return body, nil
}
