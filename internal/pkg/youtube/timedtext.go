package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultWatchURL = "https://www.youtube.com/watch"

// TimedTextConfig 网页抓取字幕配置
type TimedTextConfig struct {
	WatchURL  string        // 视频页地址，默认: https://www.youtube.com/watch
	Languages []string      // 优先语言，按顺序匹配，默认: en
	Timeout   time.Duration // 请求超时，默认 30s
}

// TimedTextClient 通过视频页面中的 captionTracks 获取字幕
// 流程：抓取 watch 页面 -> 解析 captionTracks -> 选轨 -> 下载 timedtext XML
type TimedTextClient struct {
	watchURL   string
	languages  []string
	httpClient *http.Client
}

// NewTimedTextClient 创建网页抓取字幕客户端
func NewTimedTextClient(cfg TimedTextConfig) *TimedTextClient {
	watchURL := cfg.WatchURL
	if watchURL == "" {
		watchURL = defaultWatchURL
	}
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &TimedTextClient{
		watchURL:   watchURL,
		languages:  languages,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" 表示自动生成
}

// GetCaptions 获取视频字幕
func (c *TimedTextClient) GetCaptions(ctx context.Context, videoID string) ([]Caption, error) {
	pageURL := c.watchURL + "?v=" + url.QueryEscape(videoID)
	page, status, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, ErrVideoNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch watch page: unexpected status %d", status)
	}

	if err := checkPlayability(page); err != nil {
		return nil, err
	}

	tracks, err := extractCaptionTracks(page)
	if err != nil {
		return nil, err
	}
	track, ok := pickTrack(tracks, c.languages)
	if !ok {
		return nil, ErrNoCaptions
	}

	log.Debug().
		Str("video_id", videoID).
		Str("language", track.LanguageCode).
		Str("kind", track.Kind).
		Msg("selected caption track")

	body, status, err := c.fetch(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: unexpected status %d", status)
	}

	captions, err := parseTimedText(body)
	if err != nil {
		return nil, err
	}
	if len(captions) == 0 {
		return nil, ErrNoCaptions
	}
	return captions, nil
}

func (c *TimedTextClient) fetch(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

var playabilityRe = regexp.MustCompile(`"playabilityStatus":\{"status":"([A-Z_]+)"`)

func checkPlayability(page []byte) error {
	m := playabilityRe.FindSubmatch(page)
	if m == nil {
		return nil
	}
	switch string(m[1]) {
	case "OK":
		return nil
	case "ERROR":
		return ErrVideoNotFound
	case "LOGIN_REQUIRED", "UNPLAYABLE", "AGE_CHECK_REQUIRED", "CONTENT_CHECK_REQUIRED":
		return ErrAccessRestricted
	default:
		return nil
	}
}

// extractCaptionTracks 截取 "captionTracks":[...] 的 JSON 数组并解码
func extractCaptionTracks(page []byte) ([]captionTrack, error) {
	const key = `"captionTracks":`
	idx := bytes.Index(page, []byte(key))
	if idx < 0 {
		return nil, ErrNoCaptions
	}
	raw, ok := matchBrackets(page[idx+len(key):])
	if !ok {
		return nil, fmt.Errorf("malformed captionTracks")
	}

	var tracks []captionTrack
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, fmt.Errorf("decode captionTracks: %w", err)
	}
	return tracks, nil
}

// matchBrackets 从第一个 '[' 开始找到与之配对的 ']'，跳过字符串中的括号
func matchBrackets(b []byte) ([]byte, bool) {
	start := bytes.IndexByte(b, '[')
	if start < 0 {
		return nil, false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(b); i++ {
		ch := b[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return b[start : i+1], true
			}
		}
	}
	return nil, false
}

// pickTrack 按语言优先级选轨，同语言下人工字幕优先于自动生成
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	for _, asr := range []bool{false, true} {
		for _, lang := range languages {
			for _, t := range tracks {
				if (t.Kind == "asr") != asr {
					continue
				}
				if strings.EqualFold(t.LanguageCode, lang) ||
					strings.HasPrefix(strings.ToLower(t.LanguageCode), strings.ToLower(lang)+"-") {
					return t, true
				}
			}
		}
	}
	return tracks[0], true
}

type timedTextDoc struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
	Paragraphs []struct {
		T        string `xml:"t,attr"`
		D        string `xml:"d,attr"`
		Body     string `xml:",chardata"`
		Segments []struct {
			Body string `xml:",chardata"`
		} `xml:"s"`
	} `xml:"body>p"`
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// parseTimedText 解析两种 timedtext 格式：<transcript><text start dur> 与 format 3 的 <body><p t d>
func parseTimedText(data []byte) ([]Caption, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode timedtext: %w", err)
	}

	captions := make([]Caption, 0, len(doc.Texts)+len(doc.Paragraphs))
	for _, t := range doc.Texts {
		captions = append(captions, Caption{
			Text:     cleanCaptionText(t.Body),
			Start:    parseFloat(t.Start),
			Duration: parseFloat(t.Dur),
		})
	}
	for _, p := range doc.Paragraphs {
		text := p.Body
		for _, s := range p.Segments {
			text += s.Body
		}
		captions = append(captions, Caption{
			Text:     cleanCaptionText(text),
			Start:    parseFloat(p.T) / 1000,
			Duration: parseFloat(p.D) / 1000,
		})
	}
	return captions, nil
}

// cleanCaptionText timedtext 的文本常被二次转义（&amp;#39;），XML 解码后再做一次 HTML 反转义
func cleanCaptionText(s string) string {
	s = html.UnescapeString(s)
	s = tagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
