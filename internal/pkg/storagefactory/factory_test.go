package storagefactory

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tubecast/internal/config"
	"tubecast/internal/pkg/storage"
)

func TestNewStorage(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantNil bool
		wantErr bool
	}{
		{
			name:    "disabled storage",
			cfg:     &config.StorageConfig{},
			wantNil: true,
		},
		{
			name: "valid local storage config",
			cfg: &config.StorageConfig{
				Type: "local",
				Local: &config.LocalConfig{
					BasePath: tmpDir,
					BaseURL:  "http://localhost:8080/storage/",
				},
			},
		},
		{
			name:    "missing local config",
			cfg:     &config.StorageConfig{Type: "local"},
			wantNil: true,
			wantErr: true,
		},
		{
			name:    "missing oss config",
			cfg:     &config.StorageConfig{Type: "oss"},
			wantNil: true,
			wantErr: true,
		},
		{
			name:    "unsupported storage type",
			cfg:     &config.StorageConfig{Type: "s3"},
			wantNil: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStorage(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStorage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (s == nil) != tt.wantNil {
				t.Fatalf("NewStorage() storage = %v, wantNil %v", s, tt.wantNil)
			}
		})
	}
}

func TestLocalStorage_Operations(t *testing.T) {
	tmpDir := t.TempDir()
	baseURL := "http://localhost:8080/storage"

	s, err := NewStorage(context.Background(), &config.StorageConfig{
		Type:  "local",
		Local: &config.LocalConfig{BasePath: tmpDir, BaseURL: baseURL},
	})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	ctx := context.Background()

	key := storage.ArtifactKey("episode_20260101_abcd1234.txt", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if key != "artifacts/2026/01/01/episode_20260101_abcd1234.txt" {
		t.Fatalf("ArtifactKey() = %v", key)
	}

	content := "Hello, World!"
	url, err := s.Upload(ctx, key, strings.NewReader(content), storage.ContentTypeFor(key))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if url != baseURL+"/"+key {
		t.Errorf("Upload() url = %v, want %v", url, baseURL+"/"+key)
	}

	// 临时文件不应残留
	matches, _ := filepath.Glob(filepath.Join(tmpDir, "artifacts", "2026", "01", "01", "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}

	exists, err := s.Exists(ctx, key)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v, want true", exists, err)
	}

	reader, err := s.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	got, _ := io.ReadAll(reader)
	reader.Close()
	if string(got) != content {
		t.Errorf("Download() content = %v, want %v", string(got), content)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	exists, _ = s.Exists(ctx, key)
	if exists {
		t.Errorf("Exists() = true after delete")
	}
	// 重复删除不报错
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("Delete() second call error = %v", err)
	}
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewStorage(context.Background(), &config.StorageConfig{
		Type:  "local",
		Local: &config.LocalConfig{BasePath: t.TempDir()},
	})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if _, err := s.Upload(context.Background(), "../escape.txt", strings.NewReader("x"), "text/plain"); err == nil {
		t.Errorf("Upload() with traversal key expected error")
	}
	if _, err := s.Download(context.Background(), "missing.txt"); err == nil {
		t.Errorf("Download() missing file expected error")
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"a.mp3": "audio/mpeg",
		"a.TXT": "text/plain; charset=utf-8",
		"a.bin": "application/octet-stream",
		"noext": "application/octet-stream",
	}
	for name, want := range tests {
		if got := storage.ContentTypeFor(name); got != want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}
