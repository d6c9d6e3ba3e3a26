package podcasttools

import (
	"context"
	"errors"
	"os"
)

// mockLLMProvider 用于测试的 mock LLM 提供者
type mockLLMProvider struct {
	invokeFunc func(ctx context.Context, systemPrompt, userContent string) (string, error)
	calls      int
}

func (m *mockLLMProvider) Invoke(ctx context.Context, systemPrompt, userContent string) (string, error) {
	m.calls++
	if m.invokeFunc != nil {
		return m.invokeFunc(ctx, systemPrompt, userContent)
	}
	return "", errors.New("mock invoke function not set")
}

type mockCaptionsProvider struct {
	captions []Caption
	err      error
}

func (m *mockCaptionsProvider) GetCaptions(ctx context.Context, videoID string) ([]Caption, error) {
	return m.captions, m.err
}

// mockTTSProvider 按顺序返回 results 中的结果，nil 表示写入 payload
type mockTTSProvider struct {
	results []error
	payload []byte
	calls   int
	paths   []string
}

func (m *mockTTSProvider) Synthesize(ctx context.Context, text string, voice Voice, outputPath string) error {
	m.paths = append(m.paths, outputPath)
	var err error
	if m.calls < len(m.results) {
		err = m.results[m.calls]
	}
	m.calls++
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, m.payload, 0o644)
}
