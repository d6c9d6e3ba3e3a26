package providers

import (
	"context"
	"fmt"

	"tubecast/internal/pkg/ark"
)

// ArkProvider 直接使用 volcengine-go-sdk 的 LLM 提供者（ai.provider = volcengine）
// 实现了 podcasttools.LLMProvider 接口
type ArkProvider struct {
	client *ark.Client
}

// NewArkProvider 创建基于 Ark SDK 的 LLM 提供者
func NewArkProvider(client *ark.Client) *ArkProvider {
	return &ArkProvider{client: client}
}

// Invoke 以系统指令 + 用户内容生成文本
func (p *ArkProvider) Invoke(ctx context.Context, systemPrompt, userContent string) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("ark client is required")
	}
	completion, err := p.client.Chat(ctx, systemPrompt, userContent)
	if err != nil {
		return "", err
	}
	if completion.Content == "" {
		return "", fmt.Errorf("empty response from ark (finish_reason=%s)", completion.FinishReason)
	}
	return completion.Content, nil
}
