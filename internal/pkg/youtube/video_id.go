package youtube

import (
	"errors"
	"strings"
)

// ErrInvalidURLFormat URL 中既没有 watch?v= 也没有 youtu.be/ 标记，或截出的 ID 为空
var ErrInvalidURLFormat = errors.New("invalid youtube url format")

const (
	watchMarker = "watch?v="
	shortMarker = "youtu.be/"
)

// ResolveVideoID 从 YouTube 链接中解析视频 ID
//
// 支持两种形式：
//   - https://www.youtube.com/watch?v=ID&...，取 watch?v= 之后到下一个 & 或 # 之前
//   - https://youtu.be/ID?...，取 youtu.be/ 之后到下一个 ? 之前
func ResolveVideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)

	var id string
	switch {
	case strings.Contains(rawURL, watchMarker):
		id = after(rawURL, watchMarker)
		id = cut(id, "&")
		id = cut(id, "#")
	case strings.Contains(rawURL, shortMarker):
		id = after(rawURL, shortMarker)
		id = cut(id, "?")
		id = cut(id, "#")
	default:
		return "", ErrInvalidURLFormat
	}

	if id == "" {
		return "", ErrInvalidURLFormat
	}
	return id, nil
}

func after(s, marker string) string {
	_, rest, _ := strings.Cut(s, marker)
	return rest
}

func cut(s, sep string) string {
	head, _, _ := strings.Cut(s, sep)
	return head
}
