package podcasttools

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const urlReplacement = "a website link"

type replacement struct {
	re   *regexp.Regexp
	repl string
}

func rx(pattern, repl string) replacement {
	return replacement{re: regexp.MustCompile(pattern), repl: repl}
}

// 顺序有意义：URL 必须先于 / 与 # 等符号处理
var speechReplacements = []replacement{
	rx(`(?i)\bhttps?://\S+|\bwww\.\S+`, " "+urlReplacement+" "),

	// 舞台说明与括号
	rx(`\[[^\]]*\]`, " "),
	rx(`\{[^}]*\}`, " "),
	rx(`\(([^)]*)\)`, ", $1, "),

	// markdown 强调
	rx(`\*\*(.+?)\*\*`, "$1"),
	rx(`__(.+?)__`, "$1"),
	rx(`~~(.+?)~~`, "$1"),
	rx(`\*(.+?)\*`, "$1"),
	rx(`\*`, ""),

	// 缩写
	rx(`(?i)\bi\.e\.,?`, "that is,"),
	rx(`(?i)\be\.g\.,?`, "for example,"),
	rx(`(?i)\betc\.`, "etcetera"),
	rx(`(?i)\bvs\.`, "versus"),

	// 符号
	rx(`&`, " and "),
	rx(`@`, " at "),
	rx(`#`, " number "),
	rx(`/`, " or "),
	rx(`\s*[—–|]\s*`, ", "),
	rx(`\s+-\s+`, ", "),

	// 重复标点
	rx(`\.{2,}`, "."),
	rx(`!{2,}`, "!"),
	rx(`\?{2,}`, "?"),

	// 引号
	rx(`["“”„]`, ""),
}

var spacingReplacements = []replacement{
	rx(`\s+`, " "),
	rx(`\s+([,.!?;:])`, "$1"),
	rx(`,(\s*,)+`, ","),
	rx(`,([.!?;:])`, "$1"),
	rx(`([.!?;:])\s*,`, "$1"),
	rx(`([,!?;:])(\pL)`, "$1 $2"),
	// 句点后只在大写开头且前面不是单字母缩写时补空格，Node.js、U.S. 保持原样
	rx(`(\pL\pL|\d)\.(\p{Lu})`, "$1. $2"),
}

// SpeechSanitizer 把格式化后的对话清洗为适合 TTS 朗读的文本
//
// 第一遍逐行清洗内容：markdown、括号、符号、缩写、URL、标点与空白
// 第二遍加入说话人引导语（"Alex says, "）并在换人处插入停顿
type SpeechSanitizer struct {
	pauseTag string
}

// SanitizerOption 配置 SpeechSanitizer
type SanitizerOption func(*SpeechSanitizer)

// WithPauseTag 换人处插入的停顿标记，为空时不插入
func WithPauseTag(tag string) SanitizerOption {
	return func(s *SpeechSanitizer) {
		s.pauseTag = tag
	}
}

// NewSpeechSanitizer 创建语音文本清洗器
func NewSpeechSanitizer(opts ...SanitizerOption) *SpeechSanitizer {
	s := &SpeechSanitizer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize 清洗对话文本，纯函数
func (s *SpeechSanitizer) Sanitize(dialogue string) string {
	var out []string
	prev := ""
	for _, line := range strings.Split(dialogue, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		speaker, content, ok := splitSpeaker(line)
		if !ok {
			speaker, content = "", line
		}
		content = CleanForSpeech(content)
		if content == "" {
			continue
		}

		if speaker != "" && speaker != prev {
			if prev != "" && s.pauseTag != "" {
				out = append(out, s.pauseTag)
			}
			content = CleanForSpeech(speaker) + " says, " + content
			prev = speaker
		}
		out = append(out, content)
	}
	return strings.Join(out, "\n")
}

// CleanForSpeech 单段文本的朗读清洗
func CleanForSpeech(text string) string {
	text = norm.NFKC.String(text)
	for _, r := range speechReplacements {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	for _, r := range spacingReplacements {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.Trim(text, ","))
}
