package storage

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Storage 产物存储接口
type Storage interface {
	// Upload 上传文件，返回访问URL
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download 下载文件
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetPresignedDownloadURL 获取预签名下载URL
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Delete 删除文件
	Delete(ctx context.Context, key string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
)

// ArtifactPrefix 产物在存储中的目录
const ArtifactPrefix = "artifacts"

// ArtifactKey 产物文件在存储中的 key: artifacts/<YYYY/MM/DD>/<filename>
func ArtifactKey(filename string, now time.Time) string {
	return path.Join(ArtifactPrefix, now.Format("2006/01/02"), filepath.Base(filename))
}

var contentTypes = map[string]string{
	".txt":  "text/plain; charset=utf-8",
	".json": "application/json",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}

// ContentTypeFor 根据文件扩展名获取 Content-Type
func ContentTypeFor(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}
