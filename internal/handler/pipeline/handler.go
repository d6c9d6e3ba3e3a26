package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	model "tubecast/internal/model/pipeline"
	"tubecast/internal/model/run"
	httputil "tubecast/internal/pkg/http"
	"tubecast/internal/pkg/podcasttools"
	runrepo "tubecast/internal/repository/run"
	pipelinesvc "tubecast/internal/service/pipeline"
)

// ErrorResponse 复用通用错误响应
type ErrorResponse = httputil.ErrorResponse

// Runner 处理器依赖的流水线能力
type Runner interface {
	Run(ctx context.Context, req pipelinesvc.Request) *model.State
	Get(ctx context.Context, id string) (*run.Run, error)
	List(ctx context.Context, filter run.ListFilter) ([]*run.Run, int64, error)
	OutputDir() string
}

// Handler 流水线运行处理器
type Handler struct {
	runner Runner
}

// NewHandler 创建流水线运行处理器
func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

// CreateRunRequest 创建运行请求
type CreateRunRequest struct {
	URL    string `json:"url" binding:"required"` // YouTube 链接
	Output string `json:"output"`                 // summary（默认）或 podcast
	Voice  string `json:"voice"`                  // male / female / mixed，仅 podcast 有效
}

// RunResult 运行结果 DTO
type RunResult struct {
	RunID         string    `json:"run_id"`
	VideoID       string    `json:"video_id,omitempty"`
	Output        string    `json:"output"`
	Voice         string    `json:"voice,omitempty"`
	Stage         string    `json:"stage"`
	Title         string    `json:"title,omitempty"`
	Hosts         []string  `json:"hosts,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Dialogue      string    `json:"dialogue,omitempty"`
	Filename      string    `json:"filename,omitempty"`
	DownloadURL   string    `json:"download_url,omitempty"`
	ArtifactURL   string    `json:"artifact_url,omitempty"`
	AudioSeconds  float64   `json:"audio_seconds,omitempty"`
	FailureKind   string    `json:"failure_kind,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	StartedAt     time.Time `json:"started_at"`
}

func toRunResult(s *model.State) RunResult {
	r := RunResult{
		RunID:         s.RunID,
		VideoID:       s.VideoID,
		Output:        string(s.Output),
		Stage:         s.Stage.String(),
		Title:         s.Title,
		ArtifactURL:   s.ArtifactURL,
		FailureKind:   string(s.FailureKind),
		FailureReason: s.FailureReason,
		DurationMS:    s.Duration().Milliseconds(),
		StartedAt:     s.StartedAt,
	}
	if s.Output == model.OutputPodcast {
		r.Voice = string(s.Voice)
		r.Dialogue = s.FormattedDialogue
		r.AudioSeconds = s.AudioSeconds
		if s.Hosts[0] != "" {
			r.Hosts = s.Hosts[:]
		}
	} else {
		r.Summary = s.GeneratedText
	}
	if s.Succeeded() && (s.AudioPath != "" || s.TextPath != "") {
		r.Filename = s.ArtifactFilename
		r.DownloadURL = "/download/" + s.ArtifactFilename
	}
	return r
}

// CreateRun 执行一次流水线运行
// @Summary      创建运行
// @Description  同步执行：获取字幕、生成摘要或播客对话，播客模式合成 MP3
// @Tags         运行
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRunRequest  true  "运行请求"
// @Success      200      {object}  httputil.SuccessResponse{data=RunResult}
// @Failure      400      {object}  ErrorResponse  "请求参数错误或链接无效"
// @Failure      422      {object}  ErrorResponse  "视频没有可用字幕"
// @Failure      502      {object}  ErrorResponse  "模型或语音合成失败"
// @Failure      500      {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/runs [post]
func (h *Handler) CreateRun(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeInvalidRequest,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	output, err := model.ParseOutputType(req.Output)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: httputil.CodeInvalidRequest, Message: err.Error()})
		return
	}
	// 未指定音色时由服务使用配置的默认音色
	var voice podcasttools.Voice
	if req.Voice != "" {
		if voice, err = podcasttools.ParseVoice(req.Voice); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Code: httputil.CodeInvalidRequest, Message: err.Error()})
			return
		}
	}

	st := h.runner.Run(c.Request.Context(), pipelinesvc.Request{URL: req.URL, Output: output, Voice: voice})
	result := toRunResult(st)
	if !st.Succeeded() {
		status, code := failureStatus(st.FailureKind)
		c.JSON(status, ErrorResponse{
			Code:    code,
			Message: string(st.FailureKind),
			Detail:  st.FailureReason,
			Data:    result,
		})
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", result))
}

// failureStatus 失败分类到 HTTP 状态码与业务错误码
func failureStatus(kind model.ErrorKind) (int, int) {
	switch kind {
	case model.KindInvalidRequest:
		return http.StatusBadRequest, httputil.CodeInvalidRequest
	case model.KindInvalidURLFormat:
		return http.StatusBadRequest, httputil.CodeInvalidURL
	case model.KindTranscriptUnavailable:
		return http.StatusUnprocessableEntity, httputil.CodeTranscriptUnavailable
	case model.KindGenerationFailed:
		return http.StatusBadGateway, httputil.CodeGenerationFailed
	case model.KindAudioRenderFailed:
		return http.StatusBadGateway, httputil.CodeAudioRenderFailed
	case model.KindCancelled:
		return http.StatusServiceUnavailable, httputil.CodeUnavailable
	default:
		return http.StatusInternalServerError, httputil.CodeInternal
	}
}

// GetRun 查询运行记录
// @Summary      运行详情
// @Tags         运行
// @Produce      json
// @Param        id   path      string  true  "运行ID"
// @Success      200  {object}  httputil.SuccessResponse{data=run.Run}
// @Failure      404  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse  "未配置运行记录存储"
// @Router       /api/v1/runs/{id} [get]
func (h *Handler) GetRun(c *gin.Context) {
	id := c.Param("id")
	r, err := h.runner.Get(c.Request.Context(), id)
	if err != nil {
		h.historyError(c, err)
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", r))
}

// ListRunsResponseData 运行记录列表
type ListRunsResponseData struct {
	Runs     []*run.Run `json:"runs"`
	Total    int64      `json:"total"`
	Page     int64      `json:"page"`
	PageSize int64      `json:"page_size"`
}

// ListRuns 分页查询运行记录
// @Summary      运行记录列表
// @Tags         运行
// @Produce      json
// @Param        page       query     int     false  "页码"
// @Param        page_size  query     int     false  "每页数量"
// @Param        video_id   query     string  false  "视频ID"
// @Param        status     query     string  false  "succeeded / failed"
// @Success      200        {object}  httputil.SuccessResponse{data=ListRunsResponseData}
// @Failure      503        {object}  ErrorResponse  "未配置运行记录存储"
// @Router       /api/v1/runs [get]
func (h *Handler) ListRuns(c *gin.Context) {
	page, _ := strconv.ParseInt(c.Query("page"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.Query("page_size"), 10, 64)
	filter := run.ListFilter{
		VideoID:  c.Query("video_id"),
		Status:   run.Status(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	}
	filter.Normalize()

	list, total, err := h.runner.List(c.Request.Context(), filter)
	if err != nil {
		h.historyError(c, err)
		return
	}
	if list == nil {
		list = []*run.Run{}
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", ListRunsResponseData{
		Runs:     list,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}))
}

func (h *Handler) historyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, runrepo.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Code: httputil.CodeNotFound, Message: err.Error()})
	case errors.Is(err, pipelinesvc.ErrHistoryDisabled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Code: httputil.CodeUnavailable, Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: httputil.CodeInternal, Message: "failed to query run history", Detail: err.Error()})
	}
}
