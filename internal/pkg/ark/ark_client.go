package ark

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"tubecast/internal/config"
)

const (
	defaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	defaultModel   = "doubao-seed-1-6-flash-250615"
)

// Client Ark 客户端封装
// 用于调用火山引擎的 Ark API（豆包大模型）
// 使用官方 volcengine-go-sdk
// 参考: https://github.com/volcengine/volcengine-go-sdk
type Client struct {
	client      *arkruntime.Client
	model       string
	timeout     time.Duration
	maxTokens   int
	temperature float64
}

// NewClient 创建 Ark 客户端（使用官方 SDK）
func NewClient(cfg *config.AIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Ark API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}

	return &Client{
		client:      arkruntime.NewClientWithApiKey(cfg.APIKey, arkruntime.WithBaseUrl(baseURL)),
		model:       modelName,
		timeout:     cfg.Timeout,
		maxTokens:   cfg.Options.MaxTokens,
		temperature: cfg.Options.Temperature,
	}, nil
}

// Message 消息结构
type Message struct {
	Role    string `json:"role"`    // user, assistant, system
	Content string `json:"content"` // 消息内容
}

// Usage Token使用统计
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion 单次生成结果
type Completion struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// Chat 以 system + user 两条消息调用模型，返回第一个候选
func (c *Client) Chat(ctx context.Context, system, user string) (*Completion, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := []Message{{Role: "user", Content: user}}
	if system != "" {
		messages = append([]Message{{Role: "system", Content: system}}, messages...)
	}

	input := &model.ChatCompletionRequest{
		Model:    c.model,
		Messages: convertMessages(messages),
	}
	if c.maxTokens > 0 {
		input.MaxTokens = c.maxTokens
	}
	if c.temperature > 0 {
		input.Temperature = float32(c.temperature)
	}

	output, err := c.client.CreateChatCompletion(ctx, input)
	if err != nil {
		log.Error().Err(err).Str("model", c.model).Msg("failed to call Ark ChatCompletion API")
		return nil, fmt.Errorf("Ark API call failed: %w", err)
	}
	if len(output.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := output.Choices[0]
	var content string
	if choice.Message.Content != nil && choice.Message.Content.StringValue != nil {
		content = *choice.Message.Content.StringValue
	}

	return &Completion{
		Content:      strings.TrimSpace(content),
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     output.Usage.PromptTokens,
			CompletionTokens: output.Usage.CompletionTokens,
			TotalTokens:      output.Usage.TotalTokens,
		},
	}, nil
}

// convertMessages 转换消息格式
func convertMessages(messages []Message) []*model.ChatCompletionMessage {
	result := make([]*model.ChatCompletionMessage, len(messages))
	for i := range messages {
		content := messages[i].Content
		result[i] = &model.ChatCompletionMessage{
			Role:    messages[i].Role,
			Content: &model.ChatCompletionMessageContent{StringValue: &content},
		}
	}
	return result
}
