package run

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tubecast/internal/model/run"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
    id                TEXT PRIMARY KEY,
    source_url        TEXT NOT NULL,
    video_id          TEXT,
    output            TEXT NOT NULL,
    voice             TEXT,
    status            TEXT NOT NULL,
    stage             TEXT NOT NULL,
    failure_kind      TEXT,
    failure_reason    TEXT,
    title             TEXT,
    artifact_filename TEXT,
    artifact_url      TEXT,
    transcript_length INTEGER NOT NULL DEFAULT 0,
    duration_ms       INTEGER NOT NULL DEFAULT 0,
    audio_seconds     REAL NOT NULL DEFAULT 0,
    created_at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON pipeline_runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_video ON pipeline_runs(video_id, created_at DESC);
`

const runColumns = `id, source_url, video_id, output, voice, status, stage, failure_kind,
    failure_reason, title, artifact_filename, artifact_url, transcript_length, duration_ms, audio_seconds, created_at`

// SQLiteRepo 基于本地 SQLite 文件的 RunRepository，供 CLI 使用
type SQLiteRepo struct {
	db   *sql.DB
	path string
}

// OpenSQLite 打开（或创建）运行记录数据库并建表
func OpenSQLite(path string) (*SQLiteRepo, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteRepo{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteRepo) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create 写入运行记录
func (s *SQLiteRepo) Create(ctx context.Context, r *run.Run) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO pipeline_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.SourceURL,
		nullableString(r.VideoID),
		r.Output,
		nullableString(r.Voice),
		string(r.Status),
		r.Stage,
		nullableString(r.FailureKind),
		nullableString(r.FailureReason),
		nullableString(r.Title),
		nullableString(r.ArtifactFilename),
		nullableString(r.ArtifactURL),
		r.TranscriptLength,
		r.DurationMS,
		r.AudioSeconds,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FindByID 根据ID查询运行记录
func (s *SQLiteRepo) FindByID(ctx context.Context, id string) (*run.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// List 按创建时间倒序分页查询
func (s *SQLiteRepo) List(ctx context.Context, filter run.ListFilter) ([]*run.Run, int64, error) {
	filter.Normalize()

	var conds []string
	var args []any
	if filter.VideoID != "" {
		conds = append(conds, "video_id = ?")
		args = append(args, filter.VideoID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pipeline_runs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	query := `SELECT ` + runColumns + ` FROM pipeline_runs` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var list []*run.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan run: %w", err)
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate runs: %w", err)
	}
	return list, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*run.Run, error) {
	var (
		r                                                             run.Run
		videoID, voice, failureKind, failureReason, title, name, link sql.NullString
		status, createdAt                                             string
	)
	if err := sc.Scan(
		&r.ID,
		&r.SourceURL,
		&videoID,
		&r.Output,
		&voice,
		&status,
		&r.Stage,
		&failureKind,
		&failureReason,
		&title,
		&name,
		&link,
		&r.TranscriptLength,
		&r.DurationMS,
		&r.AudioSeconds,
		&createdAt,
	); err != nil {
		return nil, err
	}

	r.VideoID = videoID.String
	r.Voice = voice.String
	r.Status = run.Status(status)
	r.FailureKind = failureKind.String
	r.FailureReason = failureReason.String
	r.Title = title.String
	r.ArtifactFilename = name.String
	r.ArtifactURL = link.String
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		r.CreatedAt = ts
	}
	return &r, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
