package podcasttools

import (
	"fmt"
	"strings"
)

// Voice 播客主持人音色偏好
type Voice string

const (
	VoiceMale   Voice = "male"
	VoiceFemale Voice = "female"
	VoiceMixed  Voice = "mixed"
)

// ParseVoice 解析音色偏好，空字符串视为 mixed
func ParseVoice(s string) (Voice, error) {
	switch v := Voice(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return VoiceMixed, nil
	case VoiceMale, VoiceFemale, VoiceMixed:
		return v, nil
	default:
		return "", fmt.Errorf("invalid voice %q, must be male/female/mixed", s)
	}
}

// Mode 内容生成模式
type Mode int

const (
	ModeSummary Mode = iota
	ModeConversation
)

func (m Mode) String() string {
	switch m {
	case ModeSummary:
		return "summary"
	case ModeConversation:
		return "conversation"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// TitleKind 标题来源文本类型，决定取样长度
type TitleKind int

const (
	TitleKindSummary TitleKind = iota
	TitleKindDialogue
)

// sampleRunes 标题生成时从正文开头截取的字符数
func (k TitleKind) sampleRunes() int {
	if k == TitleKindDialogue {
		return 1000
	}
	return 800
}
