package chain

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"tubecast/internal/ai/component"
	"tubecast/internal/config"
)

// GenerateChain 单轮生成链
// 工作流: 系统指令 + 用户内容 -> ChatModel -> 输出文本
type GenerateChain struct {
	chatModel model.BaseChatModel
}

// GenerateRequest 生成请求
type GenerateRequest struct {
	System string // 系统指令
	User   string // 用户内容（如字幕全文）
}

// GenerateResponse 生成响应
type GenerateResponse struct {
	Text         string // 模型输出（已去除首尾空白）
	PromptTokens int    // 输入 token 数
	OutputTokens int    // 输出 token 数
}

// NewGenerateChain 根据配置创建生成链
func NewGenerateChain(ctx context.Context, cfg *config.AIConfig) (*GenerateChain, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewGenerateChainWithModel(chatModel), nil
}

// NewGenerateChainWithModel 使用已有 ChatModel 创建生成链
func NewGenerateChainWithModel(chatModel model.BaseChatModel) *GenerateChain {
	return &GenerateChain{chatModel: chatModel}
}

// Run 执行一次生成
func (c *GenerateChain) Run(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	resp, err := c.chatModel.Generate(ctx, buildMessages(req))
	if err != nil {
		return nil, err
	}

	// 提取 token 使用量
	var promptTokens, outputTokens int
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		promptTokens = resp.ResponseMeta.Usage.PromptTokens
		outputTokens = resp.ResponseMeta.Usage.CompletionTokens
	}

	return &GenerateResponse{
		Text:         strings.TrimSpace(resp.Content),
		PromptTokens: promptTokens,
		OutputTokens: outputTokens,
	}, nil
}

func buildMessages(req *GenerateRequest) []*schema.Message {
	messages := make([]*schema.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, schema.SystemMessage(req.System))
	}
	return append(messages, schema.UserMessage(req.User))
}
