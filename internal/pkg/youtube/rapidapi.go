package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultRapidAPIHost = "youtube-transcript3.p.rapidapi.com"
	defaultLanguage     = "en"
)

// RapidAPIConfig RapidAPI 字幕服务配置
type RapidAPIConfig struct {
	APIKey   string        // X-RapidAPI-Key（必需）
	Host     string        // 默认: youtube-transcript3.p.rapidapi.com
	BaseURL  string        // 默认: https://{Host}
	Language string        // 默认: en
	Timeout  time.Duration // 默认 30s
}

// RapidAPIClient 通过 RapidAPI 的 youtube-transcript 服务获取字幕
type RapidAPIClient struct {
	apiKey     string
	host       string
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewRapidAPIClient 创建 RapidAPI 字幕客户端
func NewRapidAPIClient(cfg RapidAPIConfig) (*RapidAPIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("rapidapi key is required")
	}
	host := cfg.Host
	if host == "" {
		host = defaultRapidAPIHost
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + host
	}
	language := cfg.Language
	if language == "" {
		language = defaultLanguage
	}
	return &RapidAPIClient{
		apiKey:     cfg.APIKey,
		host:       host,
		baseURL:    baseURL,
		language:   language,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

// GetCaptions 获取视频字幕
func (c *RapidAPIClient) GetCaptions(ctx context.Context, videoID string) ([]Caption, error) {
	q := url.Values{}
	q.Set("videoId", videoID)
	q.Set("lang", c.language)
	endpoint := c.baseURL + "/transcript?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rapidapi request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rapidapi response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrVideoNotFound
	case http.StatusForbidden:
		return nil, ErrAccessRestricted
	default:
		log.Warn().
			Int("status", resp.StatusCode).
			Str("video_id", videoID).
			Msg("rapidapi transcript request failed")
		return nil, fmt.Errorf("rapidapi request failed: status %d", resp.StatusCode)
	}

	captions, err := decodeRapidAPITranscript(body)
	if err != nil {
		return nil, err
	}
	if len(captions) == 0 {
		return nil, ErrNoCaptions
	}
	return captions, nil
}

// rapidSegment 上游返回的时间字段有时是数字有时是字符串
type rapidSegment struct {
	Text     string    `json:"text"`
	Start    flexFloat `json:"start"`
	Offset   flexFloat `json:"offset"`
	Duration flexFloat `json:"duration"`
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// decodeRapidAPITranscript 兼容 {"transcript":[...]} 与直接返回数组两种格式
func decodeRapidAPITranscript(body []byte) ([]Caption, error) {
	var segments []rapidSegment

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &segments); err != nil {
			return nil, fmt.Errorf("decode rapidapi transcript: %w", err)
		}
	} else {
		var wrapped struct {
			Success    *bool          `json:"success"`
			Error      string         `json:"error"`
			Transcript []rapidSegment `json:"transcript"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("decode rapidapi transcript: %w", err)
		}
		if wrapped.Success != nil && !*wrapped.Success && len(wrapped.Transcript) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoCaptions, wrapped.Error)
		}
		segments = wrapped.Transcript
	}

	captions := make([]Caption, 0, len(segments))
	for _, s := range segments {
		start := float64(s.Start)
		if start == 0 {
			start = float64(s.Offset)
		}
		captions = append(captions, Caption{
			Text:     cleanCaptionText(s.Text),
			Start:    start,
			Duration: float64(s.Duration),
		})
	}
	return captions, nil
}
