package podcasttools

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultHost1 = "Host1"
	defaultHost2 = "Host2"
	// maxSpeakerLabelRunes 冒号前超过该长度视为正文中的冒号
	maxSpeakerLabelRunes = 40
)

var (
	host1Aliases = []string{"host1", "host 1", "speaker1", "speaker 1"}
	host2Aliases = []string{"host2", "host 2", "speaker2", "speaker 2"}
)

// DialogueFormatter 规范化模型生成的对话文本，保证每行都是 "说话人: 内容"
type DialogueFormatter struct {
	host1 string
	host2 string
}

// DialogueOption 配置 DialogueFormatter
type DialogueOption func(*DialogueFormatter)

// WithHosts 使用真实主持人名字替换 Host1/Host2
func WithHosts(host1, host2 string) DialogueOption {
	return func(f *DialogueFormatter) {
		if host1 != "" && host2 != "" {
			f.host1, f.host2 = host1, host2
		}
	}
}

// NewDialogueFormatter 创建对话格式化器
func NewDialogueFormatter(opts ...DialogueOption) *DialogueFormatter {
	f := &DialogueFormatter{host1: defaultHost1, host2: defaultHost2}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Hosts 返回当前使用的两位主持人标签
func (f *DialogueFormatter) Hosts() (string, string) {
	return f.host1, f.host2
}

// Format 逐行处理对话
//
//   - 空行丢弃
//   - 带说话人的行：规范化说话人标签（Host 1/Speaker1 等变体、大小写不同的主持人名）
//   - 不带说话人的行：分配给上一行之外的那位主持人
//
// 对自身输出再次调用结果不变
func (f *DialogueFormatter) Format(raw string) string {
	var out []string
	last := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		speaker, content, ok := splitSpeaker(line)
		if ok {
			speaker = f.normalize(speaker)
		} else {
			speaker, content = f.nextSpeaker(last), line
		}
		if content == "" {
			continue
		}
		out = append(out, speaker+": "+content)
		last = speaker
	}
	return strings.Join(out, "\n")
}

// nextSpeaker 没有人说过话或第二位刚说完时轮到第一位，否则轮到第二位
func (f *DialogueFormatter) nextSpeaker(last string) string {
	if last == "" || last == f.host2 {
		return f.host1
	}
	return f.host2
}

func (f *DialogueFormatter) normalize(label string) string {
	lower := strings.ToLower(label)
	for _, alias := range host1Aliases {
		if strings.Contains(lower, alias) {
			return f.host1
		}
	}
	for _, alias := range host2Aliases {
		if strings.Contains(lower, alias) {
			return f.host2
		}
	}
	switch {
	case strings.EqualFold(label, f.host1):
		return f.host1
	case strings.EqualFold(label, f.host2):
		return f.host2
	default:
		return label
	}
}

// splitSpeaker 在第一个冒号处拆分说话人与内容
// 冒号属于 :// 或冒号前文本过长、为空时不视为说话人分隔
func splitSpeaker(line string) (speaker, content string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	if strings.HasPrefix(line[idx:], "://") {
		return "", "", false
	}
	speaker = strings.TrimSpace(strings.Trim(line[:idx], "*_ "))
	if speaker == "" || utf8.RuneCountInString(speaker) > maxSpeakerLabelRunes {
		return "", "", false
	}
	content = strings.TrimSpace(strings.TrimLeft(line[idx+1:], "*_ "))
	return speaker, content, true
}
