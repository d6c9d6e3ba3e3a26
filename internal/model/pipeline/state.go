package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tubecast/internal/pkg/id"
	"tubecast/internal/pkg/podcasttools"
)

// OutputType 请求的产物类型
type OutputType string

const (
	OutputSummary OutputType = "summary"
	OutputPodcast OutputType = "podcast"
)

// IsPodcast 转写稿之后的分支判断，其余取值都走摘要分支
func (o OutputType) IsPodcast() bool {
	return o == OutputPodcast
}

// ParseOutputType 解析产物类型，空字符串视为 summary
func ParseOutputType(s string) (OutputType, error) {
	switch o := OutputType(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OutputSummary, nil
	case OutputSummary, OutputPodcast:
		return o, nil
	default:
		return "", fmt.Errorf("invalid output %q, must be summary/podcast", s)
	}
}

// Stage 流水线阶段，按声明顺序单调前进
type Stage int

const (
	StageInitialized Stage = iota
	StageTranscriptFetched
	StageContentGenerated
	StageDialogueFormatted
	StageTitleGenerated
	StageAudioGenerated
	StageFailed
)

var stageNames = [...]string{
	StageInitialized:       "initialized",
	StageTranscriptFetched: "transcript_fetched",
	StageContentGenerated:  "content_generated",
	StageDialogueFormatted: "dialogue_formatted",
	StageTitleGenerated:    "title_generated",
	StageAudioGenerated:    "audio_generated",
	StageFailed:            "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// MarshalText 以名称序列化，便于 JSON/BSON 之外的展示
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 解析阶段名称
func (s *Stage) UnmarshalText(b []byte) error {
	for i, name := range stageNames {
		if name == string(b) {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", string(b))
}

// ErrorKind 失败分类
type ErrorKind string

const (
	KindInvalidRequest        ErrorKind = "invalid_request"
	KindInvalidURLFormat      ErrorKind = "invalid_url_format"
	KindTranscriptUnavailable ErrorKind = "transcript_unavailable"
	KindGenerationFailed      ErrorKind = "generation_failed"
	KindAudioRenderFailed     ErrorKind = "audio_render_failed"
	KindArtifactWriteFailed   ErrorKind = "artifact_write_failed"
	KindCancelled             ErrorKind = "cancelled"
	KindInternal              ErrorKind = "internal"
)

// ErrIllegalTransition 阶段回退或离开 Failed
var ErrIllegalTransition = errors.New("illegal stage transition")

// State 一次流水线运行的全部状态
// 由编排器独占，阶段只通过 Advance/Fail 变更
type State struct {
	RunID     string             `json:"run_id"`
	SourceURL string             `json:"source_url"`
	Output    OutputType         `json:"output"`
	Voice     podcasttools.Voice `json:"voice"`
	VideoID   string             `json:"video_id,omitempty"`

	Transcript        string    `json:"-"`
	GeneratedText     string    `json:"generated_text,omitempty"`
	Hosts             [2]string `json:"hosts,omitempty"`
	FormattedDialogue string    `json:"formatted_dialogue,omitempty"`
	Title             string    `json:"title,omitempty"`
	SpeechText        string    `json:"-"`

	ArtifactFilename string  `json:"artifact_filename,omitempty"`
	AudioPath        string  `json:"audio_path,omitempty"`
	TextPath         string  `json:"text_path,omitempty"`
	ArtifactURL      string  `json:"artifact_url,omitempty"`
	AudioSeconds     float64 `json:"audio_seconds,omitempty"`

	Stage         Stage     `json:"stage"`
	FailureKind   ErrorKind `json:"failure_kind,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewState 创建初始状态，voice 只在 podcast 下有意义
func NewState(sourceURL string, output OutputType, voice podcasttools.Voice) *State {
	if voice == "" {
		voice = podcasttools.VoiceMixed
	}
	return &State{
		RunID:     id.New(),
		SourceURL: sourceURL,
		Output:    output,
		Voice:     voice,
		Stage:     StageInitialized,
		StartedAt: time.Now(),
	}
}

// Advance 前进到 next，只允许向后且不能用来进入 Failed
func (s *State) Advance(next Stage) error {
	if s.Stage == StageFailed || next == StageFailed || next <= s.Stage {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.Stage, next)
	}
	s.Stage = next
	return nil
}

// Fail 标记失败，已失败的状态保持第一次的原因
func (s *State) Fail(kind ErrorKind, err error) {
	if s.Stage == StageFailed {
		return
	}
	s.Stage = StageFailed
	s.FailureKind = kind
	if err != nil {
		s.FailureReason = err.Error()
	} else {
		s.FailureReason = string(kind)
	}
	s.complete()
}

// Finish 标记成功结束
func (s *State) Finish() {
	s.complete()
}

func (s *State) complete() {
	if s.CompletedAt == nil {
		now := time.Now()
		s.CompletedAt = &now
	}
}

// IsTerminal 是否到达终态
func (s *State) IsTerminal() bool {
	switch s.Stage {
	case StageFailed, StageAudioGenerated:
		return true
	case StageContentGenerated:
		return !s.Output.IsPodcast()
	default:
		return false
	}
}

// Succeeded 是否成功结束
func (s *State) Succeeded() bool {
	return s.IsTerminal() && s.Stage != StageFailed
}

// Duration 运行耗时，未结束时返回到现在的时长
func (s *State) Duration() time.Duration {
	if s.CompletedAt != nil {
		return s.CompletedAt.Sub(s.StartedAt)
	}
	return time.Since(s.StartedAt)
}
