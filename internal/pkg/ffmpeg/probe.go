package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// Prober 通过 ffprobe 读取媒体信息
type Prober struct {
	ffprobePath string // FFprobe 可执行文件路径（默认: ffprobe）
}

// NewProber 创建 Prober
// path 为空时依次使用 FFPROBE_PATH 环境变量与 PATH 中的 ffprobe
func NewProber(path string) (*Prober, error) {
	if path == "" {
		path = os.Getenv("FFPROBE_PATH")
	}
	if path == "" {
		path = "ffprobe"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	return &Prober{ffprobePath: resolved}, nil
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// AudioDuration 获取音频时长
func (p *Prober) AudioDuration(ctx context.Context, audioPath string) (time.Duration, error) {
	// ffprobe -v error -show_entries format=duration -of json audio.mp3
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		audioPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseDuration(output)
}

func parseDuration(output []byte) (time.Duration, error) {
	var out probeOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if out.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe output has no duration")
	}
	secs, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
