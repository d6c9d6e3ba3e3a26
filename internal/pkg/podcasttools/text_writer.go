package podcasttools

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteTextArtifact 以 UTF-8 写入文本产物，先写临时文件再 rename
func WriteTextArtifact(destPath, text string) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrArtifactWriteFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*.txt")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArtifactWriteFailed, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrArtifactWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrArtifactWriteFailed, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrArtifactWriteFailed, err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("%w: %w", ErrArtifactWriteFailed, err)
	}
	return nil
}
