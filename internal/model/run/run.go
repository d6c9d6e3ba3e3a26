package run

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tubecast/internal/model/pipeline"
)

// Status 运行结果
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run 一次流水线运行的历史记录
// 只保存元数据，不保存转写稿和生成文本
type Run struct {
	ID               string    `bson:"id" json:"id"`                                                   // 运行ID（UUID）
	SourceURL        string    `bson:"source_url" json:"source_url"`                                   // 原始链接
	VideoID          string    `bson:"video_id,omitempty" json:"video_id,omitempty"`                   // 视频ID
	Output           string    `bson:"output" json:"output"`                                           // summary / podcast
	Voice            string    `bson:"voice,omitempty" json:"voice,omitempty"`                         // 音色偏好
	Status           Status    `bson:"status" json:"status"`                                           // 结果
	Stage            string    `bson:"stage" json:"stage"`                                             // 终止阶段
	FailureKind      string    `bson:"failure_kind,omitempty" json:"failure_kind,omitempty"`           // 失败分类
	FailureReason    string    `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`       // 失败原因
	Title            string    `bson:"title,omitempty" json:"title,omitempty"`                         // 标题
	ArtifactFilename string    `bson:"artifact_filename,omitempty" json:"artifact_filename,omitempty"` // 产物文件名
	ArtifactURL      string    `bson:"artifact_url,omitempty" json:"artifact_url,omitempty"`           // 产物发布地址
	TranscriptLength int       `bson:"transcript_length" json:"transcript_length"`                     // 转写稿字符数
	DurationMS       int64     `bson:"duration_ms" json:"duration_ms"`                                 // 耗时（毫秒）
	AudioSeconds     float64   `bson:"audio_seconds,omitempty" json:"audio_seconds,omitempty"`         // 音频时长（秒）
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (r *Run) Collection() string { return "pipeline_runs" }

// EnsureIndexes 创建和维护索引
func (r *Run) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created"),
		},
		{
			Keys: bson.D{
				{Key: "video_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_video_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_status"),
		},
	}
	_, err := db.Collection(r.Collection()).Indexes().CreateMany(ctx, indexes)
	return err
}

// FromState 从终态的流水线状态生成历史记录
func FromState(s *pipeline.State) *Run {
	status := StatusSucceeded
	if !s.Succeeded() {
		status = StatusFailed
	}
	r := &Run{
		ID:               s.RunID,
		SourceURL:        s.SourceURL,
		VideoID:          s.VideoID,
		Output:           string(s.Output),
		Status:           status,
		Stage:            s.Stage.String(),
		FailureKind:      string(s.FailureKind),
		FailureReason:    s.FailureReason,
		Title:            s.Title,
		ArtifactFilename: s.ArtifactFilename,
		ArtifactURL:      s.ArtifactURL,
		TranscriptLength: len([]rune(s.Transcript)),
		DurationMS:       s.Duration().Milliseconds(),
		AudioSeconds:     s.AudioSeconds,
		CreatedAt:        s.StartedAt,
	}
	if s.Output == pipeline.OutputPodcast {
		r.Voice = string(s.Voice)
	}
	return r
}

// ListFilter 历史查询条件
type ListFilter struct {
	VideoID  string
	Status   Status
	Page     int64
	PageSize int64
}

// Normalize 补全分页默认值
func (f *ListFilter) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 200 {
		f.PageSize = 20
	}
}
