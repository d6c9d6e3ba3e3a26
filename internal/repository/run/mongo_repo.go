package run

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tubecast/internal/model/run"
)

// MongoRepo 基于 MongoDB 的 RunRepository
type MongoRepo struct {
	coll *mongo.Collection
}

// NewMongoRepo 创建运行记录仓库
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	var r run.Run
	return &MongoRepo{coll: db.Collection(r.Collection())}
}

// Create 写入运行记录
func (m *MongoRepo) Create(ctx context.Context, r *run.Run) error {
	_, err := m.coll.InsertOne(ctx, r)
	return err
}

// FindByID 根据ID查询运行记录
func (m *MongoRepo) FindByID(ctx context.Context, id string) (*run.Run, error) {
	var r run.Run
	if err := m.coll.FindOne(ctx, bson.M{"id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// List 按创建时间倒序分页查询（支持视频ID/状态筛选）
func (m *MongoRepo) List(ctx context.Context, filter run.ListFilter) ([]*run.Run, int64, error) {
	filter.Normalize()

	query := bson.M{}
	if filter.VideoID != "" {
		query["video_id"] = filter.VideoID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := m.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((filter.Page - 1) * filter.PageSize).
		SetLimit(filter.PageSize)

	cur, err := m.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var list []*run.Run
	if err := cur.All(ctx, &list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
