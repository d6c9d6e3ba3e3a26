package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"tubecast/internal/pkg/id"
)

const (
	defaultAPIURL    = "https://openspeech.bytedance.com/api/v1/tts"
	defaultCluster   = "volcano_tts"
	defaultVoiceType = "BV503_streaming"
	// 接口单次请求文本上限为 1024 字节
	defaultMaxChunkBytes = 1000
	successCode          = 3000
)

// Config TTS 配置
type Config struct {
	APIURL        string        // API 地址，默认: https://openspeech.bytedance.com/api/v1/tts
	AccessToken   string        // 访问令牌（必需）
	AppID         string        // 应用ID（可选）
	Cluster       string        // 集群名称，默认: volcano_tts
	VoiceType     string        // 默认语音类型
	SampleRate    int           // 采样率，默认: 24000
	Timeout       time.Duration // 单次请求超时，默认 30s
	MaxChunkBytes int           // 单次请求文本字节上限
}

// Client TTS 客户端封装
// 用于调用火山引擎的 TTS API（文本转语音）
// 参考: https://openspeech.bytedance.com/api/v1/tts
type Client struct {
	apiURL        string
	accessToken   string
	appID         string
	cluster       string
	voiceType     string
	sampleRate    int
	maxChunkBytes int
	httpClient    *http.Client
}

// NewClient 创建 TTS 客户端
func NewClient(config Config) (*Client, error) {
	if config.AccessToken == "" {
		return nil, fmt.Errorf("TTS access token is required")
	}

	c := &Client{
		apiURL:        config.APIURL,
		accessToken:   config.AccessToken,
		appID:         config.AppID,
		cluster:       config.Cluster,
		voiceType:     config.VoiceType,
		sampleRate:    config.SampleRate,
		maxChunkBytes: config.MaxChunkBytes,
		httpClient:    &http.Client{Timeout: config.Timeout},
	}
	if c.apiURL == "" {
		c.apiURL = defaultAPIURL
	}
	if c.cluster == "" {
		c.cluster = defaultCluster
	}
	if c.voiceType == "" {
		c.voiceType = defaultVoiceType
	}
	if c.sampleRate == 0 {
		c.sampleRate = 24000
	}
	if c.maxChunkBytes <= 0 {
		c.maxChunkBytes = defaultMaxChunkBytes
	}
	if c.httpClient.Timeout <= 0 {
		c.httpClient.Timeout = 30 * time.Second
	}
	return c, nil
}

// Synthesize 合成整段文本，超长文本分段请求后按顺序拼接 MP3 数据
// voiceType 为空时使用默认音色
func (c *Client) Synthesize(ctx context.Context, text, voiceType string) ([]byte, error) {
	if voiceType == "" {
		voiceType = c.voiceType
	}
	chunks := SplitText(text, c.maxChunkBytes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("empty text")
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		data, err := c.synthesizeChunk(ctx, chunk, voiceType)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio.Write(data)
	}

	log.Debug().
		Int("chunks", len(chunks)).
		Int("bytes", audio.Len()).
		Str("voice_type", voiceType).
		Msg("TTS synthesis finished")

	return audio.Bytes(), nil
}

func (c *Client) synthesizeChunk(ctx context.Context, text, voiceType string) ([]byte, error) {
	requestID := id.New()
	reqBody, err := json.Marshal(c.buildRequestConfig(text, voiceType, requestID))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer; %s", c.accessToken))
	req.Header.Set("Content-Type", "application/json")

	log.Debug().
		Str("request_id", requestID).
		Int("text_bytes", len(text)).
		Msg("sending TTS request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, truncate(respBody, 256))
	}

	var apiResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    string `json:"data"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if apiResp.Code != successCode {
		if apiResp.Message == "" {
			apiResp.Message = "unknown error"
		}
		return nil, fmt.Errorf("API response error: %s (code: %d)", apiResp.Message, apiResp.Code)
	}
	if apiResp.Data == "" {
		return nil, fmt.Errorf("audio data not found")
	}

	audio, err := base64.StdEncoding.DecodeString(apiResp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio data: %w", err)
	}
	return audio, nil
}

// buildRequestConfig 构建请求配置
// 参考官方文档: https://openspeech.bytedance.com/api/v1/tts
func (c *Client) buildRequestConfig(text, voiceType, requestID string) map[string]interface{} {
	appConfig := map[string]interface{}{
		"token":   c.accessToken,
		"cluster": c.cluster,
	}
	if c.appID != "" {
		appConfig["appid"] = c.appID
	}

	return map[string]interface{}{
		"app":  appConfig,
		"user": map[string]interface{}{"uid": requestID},
		"audio": map[string]interface{}{
			"voice_type":   voiceType,
			"encoding":     "mp3",
			"rate":         c.sampleRate,
			"speed_ratio":  1.0,
			"volume_ratio": 1.0,
			"pitch_ratio":  1.0,
			"language":     "en",
		},
		"request": map[string]interface{}{
			"reqid":     requestID,
			"text":      text,
			"text_type": "plain",
			"operation": "query",
		},
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
