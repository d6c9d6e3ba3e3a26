package providers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"tubecast/internal/ai/chain"
)

// EinoProvider Eino 封装的 LLM 提供者（默认使用）
// 使用 ai/chain 的 GenerateChain（基于 ai/component 创建的 ChatModel）
// 实现了 podcasttools.LLMProvider 接口
type EinoProvider struct {
	chain *chain.GenerateChain
}

// NewEinoProvider 创建基于 Eino 的 LLM 提供者
func NewEinoProvider(c *chain.GenerateChain) *EinoProvider {
	return &EinoProvider{chain: c}
}

// Invoke 以系统指令 + 用户内容生成文本
func (p *EinoProvider) Invoke(ctx context.Context, systemPrompt, userContent string) (string, error) {
	if p.chain == nil {
		return "", fmt.Errorf("generate chain is required")
	}

	resp, err := p.chain.Run(ctx, &chain.GenerateRequest{System: systemPrompt, User: userContent})
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp.Text == "" {
		return "", fmt.Errorf("empty response from chat model")
	}

	log.Debug().
		Int("prompt_tokens", resp.PromptTokens).
		Int("output_tokens", resp.OutputTokens).
		Msg("llm call finished")
	return resp.Text, nil
}
