package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	model "tubecast/internal/model/pipeline"
	"tubecast/internal/model/run"
	"tubecast/internal/pkg/ctxutil"
	"tubecast/internal/pkg/podcasttools"
	"tubecast/internal/pkg/storage"
	runrepo "tubecast/internal/repository/run"
)

const (
	historyWriteTimeout = 5 * time.Second
	publishTimeout      = 2 * time.Minute
	probeTimeout        = 10 * time.Second
	// artifactURLExpiry 发布后返回的下载链接有效期
	artifactURLExpiry = 24 * time.Hour
)

// ErrHistoryDisabled 未配置运行记录存储
var ErrHistoryDisabled = errors.New("run history is disabled")

// AudioProber 读取音频时长
type AudioProber interface {
	AudioDuration(ctx context.Context, path string) (time.Duration, error)
}

// Request 一次运行的输入
type Request struct {
	URL    string
	Output model.OutputType
	Voice  podcasttools.Voice
}

// Service 流水线服务：执行运行、发布产物、记录历史
type Service struct {
	deps         *Deps
	storage      storage.Storage
	history      runrepo.RunRepository
	defaultVoice podcasttools.Voice
	prober       AudioProber
}

// Option 配置 Service
type Option func(*Service)

// WithStorage 运行成功后把产物上传到存储
func WithStorage(s storage.Storage) Option {
	return func(svc *Service) {
		svc.storage = s
	}
}

// WithHistory 记录每次运行的元数据
func WithHistory(r runrepo.RunRepository) Option {
	return func(svc *Service) {
		svc.history = r
	}
}

// WithDefaultVoice 请求未指定音色时使用的音色
func WithDefaultVoice(v podcasttools.Voice) Option {
	return func(svc *Service) {
		if v != "" {
			svc.defaultVoice = v
		}
	}
}

// WithAudioProber 播客生成后读取音频时长写入运行记录
func WithAudioProber(p AudioProber) Option {
	return func(svc *Service) {
		svc.prober = p
	}
}

// NewService 创建流水线服务
func NewService(deps *Deps, opts ...Option) (*Service, error) {
	if deps == nil || deps.Transcripts == nil || deps.Transformer == nil {
		return nil, fmt.Errorf("transcript source and transformer are required")
	}
	if deps.Sanitizer == nil || deps.Renderer == nil {
		return nil, fmt.Errorf("sanitizer and renderer are required")
	}
	svc := &Service{deps: deps, defaultVoice: podcasttools.VoiceMixed}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Run 同步执行一次完整运行，返回终态
// 失败信息在 State.FailureKind/FailureReason 中，不通过 error 返回
func (s *Service) Run(ctx context.Context, req Request) *model.State {
	voice := req.Voice
	if voice == "" {
		voice = s.defaultVoice
	}
	output, parseErr := model.ParseOutputType(string(req.Output))
	if parseErr != nil {
		output = req.Output
	}
	st := model.NewState(req.URL, output, voice)
	if parseErr != nil {
		st.Fail(model.KindInvalidRequest, parseErr)
	}

	lc := log.With().
		Str("run_id", st.RunID).
		Str("output", string(st.Output))
	if rid, ok := ctxutil.GetRequestID(ctx); ok {
		lc = lc.Str("request_id", rid)
	}
	logger := lc.Logger()
	logger.Info().Str("url", req.URL).Str("voice", string(st.Voice)).Msg("pipeline run started")

	for Next(ctx, s.deps, st) {
	}

	if st.Succeeded() {
		s.probe(ctx, st)
		s.publish(ctx, st)
		logger.Info().
			Str("video_id", st.VideoID).
			Str("artifact", st.ArtifactFilename).
			Dur("duration", st.Duration()).
			Msg("pipeline run succeeded")
	} else {
		logger.Warn().
			Str("video_id", st.VideoID).
			Str("kind", string(st.FailureKind)).
			Str("reason", st.FailureReason).
			Msg("pipeline run failed")
	}

	s.record(ctx, st)
	return st
}

// Get 查询运行记录
func (s *Service) Get(ctx context.Context, id string) (*run.Run, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.FindByID(ctx, id)
}

// List 分页查询运行记录
func (s *Service) List(ctx context.Context, filter run.ListFilter) ([]*run.Run, int64, error) {
	if s.history == nil {
		return nil, 0, ErrHistoryDisabled
	}
	return s.history.List(ctx, filter)
}

// OutputDir 产物目录
func (s *Service) OutputDir() string {
	return s.deps.OutputDir
}

// probe 读取音频时长，失败不影响运行结果
func (s *Service) probe(ctx context.Context, st *model.State) {
	if s.prober == nil || st.AudioPath == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), probeTimeout)
	defer cancel()

	d, err := s.prober.AudioDuration(ctx, st.AudioPath)
	if err != nil {
		log.Warn().Err(err).Str("run_id", st.RunID).Msg("failed to probe audio duration")
		return
	}
	st.AudioSeconds = d.Seconds()
}

// publish 上传产物，失败只记日志：本地文件已经生成，运行仍然成功
func (s *Service) publish(ctx context.Context, st *model.State) {
	if s.storage == nil {
		return
	}
	path := st.AudioPath
	if path == "" {
		path = st.TextPath
	}
	if path == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	url, err := s.upload(ctx, path)
	if err != nil {
		log.Warn().Err(err).Str("run_id", st.RunID).Str("path", path).Msg("artifact publish failed")
		return
	}
	st.ArtifactURL = url
	log.Debug().
		Str("run_id", st.RunID).
		Str("storage", s.storage.GetStorageType()).
		Str("url", url).
		Msg("artifact published")
}

func (s *Service) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	key := storage.ArtifactKey(filepath.Base(path), s.deps.now())
	if _, err := s.storage.Upload(ctx, key, f, storage.ContentTypeFor(path)); err != nil {
		return "", err
	}
	return s.storage.GetPresignedDownloadURL(ctx, key, artifactURLExpiry)
}

// record 写入运行记录，调用方取消不影响写入
func (s *Service) record(ctx context.Context, st *model.State) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	if err := s.history.Create(ctx, run.FromState(st)); err != nil {
		log.Warn().Err(err).Str("run_id", st.RunID).Msg("failed to record run history")
	}
}
