package youtube

import (
	"errors"
	"net/http"
	"time"
)

// Caption 单条字幕
type Caption struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`    // 秒
	Duration float64 `json:"duration"` // 秒
}

var (
	// ErrVideoNotFound 视频不存在
	ErrVideoNotFound = errors.New("video not found")
	// ErrNoCaptions 视频没有可用字幕
	ErrNoCaptions = errors.New("no captions available")
	// ErrAccessRestricted 视频受限（私有、需要登录、地区限制等）
	ErrAccessRestricted = errors.New("video access restricted")
)

const defaultTimeout = 30 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
