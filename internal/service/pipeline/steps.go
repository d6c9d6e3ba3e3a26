package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	model "tubecast/internal/model/pipeline"
	"tubecast/internal/pkg/podcasttools"
	"tubecast/internal/pkg/youtube"
)

// TranscriptSource 按视频ID获取字幕全文
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Transformer 摘要/对话生成
type Transformer interface {
	Transform(ctx context.Context, transcript string, mode podcasttools.Mode, voice podcasttools.Voice) (string, error)
}

// TitleGenerator 标题生成，失败返回 ""
type TitleGenerator interface {
	Generate(ctx context.Context, text string, kind podcasttools.TitleKind) string
}

// Formatter 对话格式化
type Formatter interface {
	Format(raw string) string
}

// Sanitizer 朗读文本清洗
type Sanitizer interface {
	Sanitize(dialogue string) string
}

// Renderer 语音合成并发布到目标路径
type Renderer interface {
	Render(ctx context.Context, text, destPath string, voice podcasttools.Voice) (string, error)
}

// Deps 流水线各阶段的依赖
type Deps struct {
	Transcripts TranscriptSource
	Transformer Transformer
	Titles      TitleGenerator
	Sanitizer   Sanitizer
	Renderer    Renderer

	// NewFormatter 按本次运行的主持人创建格式化器，为空时使用 podcasttools.NewDialogueFormatter
	NewFormatter func(host1, host2 string) Formatter

	// OutputDir 产物目录；summary 为空时不写文件，podcast 为空时写到当前目录
	OutputDir string

	// Now 用于产物文件名中的日期
	Now func() time.Time
}

// route 转写稿获取之后的分支
type route int

const (
	routeSummary route = iota
	routePodcast
)

// routeFor 分支判断，只依赖请求的产物类型
func routeFor(output model.OutputType) route {
	if output.IsPodcast() {
		return routePodcast
	}
	return routeSummary
}

func (r route) mode() podcasttools.Mode {
	if r == routePodcast {
		return podcasttools.ModeConversation
	}
	return podcasttools.ModeSummary
}

// Next 执行当前阶段的下一步并更新 s，返回是否还需要继续
//
// 每次调用只推进一个阶段；终态（成功或 Failed）直接返回 false。
// 取消只在阶段之间检查，进行中的网络调用由各 provider 自己响应 ctx。
func Next(ctx context.Context, d *Deps, s *model.State) bool {
	if s.IsTerminal() {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.Fail(model.KindCancelled, err)
		return false
	}

	var err error
	switch s.Stage {
	case model.StageInitialized:
		err = fetchTranscript(ctx, d, s)
	case model.StageTranscriptFetched:
		err = generateContent(ctx, d, s)
	case model.StageContentGenerated:
		err = formatDialogue(d, s)
	case model.StageDialogueFormatted:
		err = generateTitle(ctx, d, s)
	case model.StageTitleGenerated:
		err = renderAudio(ctx, d, s)
	default:
		err = fmt.Errorf("no step for stage %s", s.Stage)
	}

	if err != nil {
		kind := classify(ctx, err)
		log.Error().
			Err(err).
			Str("run_id", s.RunID).
			Str("stage", s.Stage.String()).
			Str("kind", string(kind)).
			Msg("pipeline stage failed")
		s.Fail(kind, err)
		return false
	}

	log.Debug().
		Str("run_id", s.RunID).
		Str("stage", s.Stage.String()).
		Msg("pipeline stage completed")

	if s.IsTerminal() {
		s.Finish()
		return false
	}
	return true
}

func fetchTranscript(ctx context.Context, d *Deps, s *model.State) error {
	videoID, err := youtube.ResolveVideoID(s.SourceURL)
	if err != nil {
		return err
	}
	s.VideoID = videoID

	transcript, err := d.Transcripts.Fetch(ctx, videoID)
	if err != nil {
		return err
	}
	s.Transcript = transcript
	return s.Advance(model.StageTranscriptFetched)
}

func generateContent(ctx context.Context, d *Deps, s *model.State) error {
	r := routeFor(s.Output)
	text, err := d.Transformer.Transform(ctx, s.Transcript, r.mode(), s.Voice)
	if err != nil {
		return err
	}
	s.GeneratedText = text

	if r == routeSummary && d.OutputDir != "" {
		// 摘要不生成标题，文件名总是日期兜底
		s.ArtifactFilename = podcasttools.ArtifactBaseName("", d.now(), s.RunID) + ".txt"
		path := filepath.Join(d.OutputDir, s.ArtifactFilename)
		if err := podcasttools.WriteTextArtifact(path, text); err != nil {
			return err
		}
		s.TextPath = path
	}
	return s.Advance(model.StageContentGenerated)
}

func formatDialogue(d *Deps, s *model.State) error {
	host1, host2 := podcasttools.HostsFor(s.Voice)
	s.Hosts = [2]string{host1, host2}
	s.FormattedDialogue = d.formatter(host1, host2).Format(s.GeneratedText)
	if s.FormattedDialogue == "" {
		return &podcasttools.GenerationError{
			Mode: podcasttools.ModeConversation,
			Err:  errors.New("dialogue is empty after formatting"),
		}
	}
	return s.Advance(model.StageDialogueFormatted)
}

func generateTitle(ctx context.Context, d *Deps, s *model.State) error {
	if d.Titles != nil {
		s.Title = d.Titles.Generate(ctx, s.FormattedDialogue, podcasttools.TitleKindDialogue)
	}
	s.ArtifactFilename = podcasttools.ArtifactBaseName(s.Title, d.now(), s.RunID) + ".mp3"
	return s.Advance(model.StageTitleGenerated)
}

func renderAudio(ctx context.Context, d *Deps, s *model.State) error {
	s.SpeechText = d.Sanitizer.Sanitize(s.FormattedDialogue)
	dest := filepath.Join(d.OutputDir, s.ArtifactFilename)
	path, err := d.Renderer.Render(ctx, s.SpeechText, dest, s.Voice)
	if err != nil {
		return err
	}
	s.AudioPath = path
	return s.Advance(model.StageAudioGenerated)
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) formatter(host1, host2 string) Formatter {
	if d.NewFormatter != nil {
		return d.NewFormatter(host1, host2)
	}
	return podcasttools.NewDialogueFormatter(podcasttools.WithHosts(host1, host2))
}

// classify 把阶段错误映射为失败分类
func classify(ctx context.Context, err error) model.ErrorKind {
	switch {
	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		return model.KindCancelled
	case errors.Is(err, youtube.ErrInvalidURLFormat):
		return model.KindInvalidURLFormat
	case errors.Is(err, podcasttools.ErrTranscriptUnavailable):
		return model.KindTranscriptUnavailable
	case errors.Is(err, podcasttools.ErrGenerationFailed):
		return model.KindGenerationFailed
	case errors.Is(err, podcasttools.ErrAudioRenderFailed):
		return model.KindAudioRenderFailed
	case errors.Is(err, podcasttools.ErrArtifactWriteFailed):
		return model.KindArtifactWriteFailed
	default:
		return model.KindInternal
	}
}
