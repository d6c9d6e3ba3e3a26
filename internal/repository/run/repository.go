package run

import (
	"context"
	"errors"

	"tubecast/internal/model/run"
)

// ErrNotFound 运行记录不存在
var ErrNotFound = errors.New("run not found")

// RunRepository 运行记录仓库接口
type RunRepository interface {
	Create(ctx context.Context, r *run.Run) error
	FindByID(ctx context.Context, id string) (*run.Run, error)
	List(ctx context.Context, filter run.ListFilter) ([]*run.Run, int64, error)
}
