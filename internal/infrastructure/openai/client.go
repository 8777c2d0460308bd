package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/listwise/backend/internal/infrastructure/config"
	"github.com/listwise/backend/internal/infrastructure/log"
)

// Client OpenAI 兼容接口客户端
// 覆盖三个上游服务：chat completions（结构化输出）、moderations、images
// 配置通过 *config.Config 读取快照，支持热更新
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Message Chat 消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat 结构化输出声明
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest Chat API 请求
type ChatRequest struct {
	Messages       []Message       `json:"messages"`
	Model          string          `json:"model,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse Chat API 响应
type ChatResponse struct {
	ID      string `json:"id,omitempty"`
	Model   string `json:"model,omitempty"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ModerationRequest Moderation API 请求
type ModerationRequest struct {
	Input string `json:"input"`
}

// ModerationResult 单条审核结果
type ModerationResult struct {
	Flagged    bool            `json:"flagged"`
	Categories map[string]bool `json:"categories"`
}

// ModerationResponse Moderation API 响应
type ModerationResponse struct {
	Results []ModerationResult `json:"results"`
}

// ImageRequest Image API 请求
type ImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

// ImageResponse Image API 响应
type ImageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// NewClient 创建 OpenAI 客户端
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log.NewModuleLogger("openai", "client"),
	}
}

// post 发送 JSON 请求并解码响应
func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	snapshot := c.cfg.OpenAISnapshot()

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := snapshot.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", snapshot.APIKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("openai returned status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("failed to decode openai response: %w", err)
	}
	return nil
}

// ChatJSON 发送 chat completion 请求，要求模型以 JSON 对象响应
// 返回 choices[0].message.content 的原始文本，解析与校验由调用方负责
func (c *Client) ChatJSON(ctx context.Context, messages []Message) (string, error) {
	snapshot := c.cfg.OpenAISnapshot()

	reqBody := ChatRequest{
		Messages:       messages,
		Model:          snapshot.ChatModel,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	c.logger.Debug("Sending chat completion request",
		"model", snapshot.ChatModel,
		"messages", len(messages),
	)

	var chatResp ChatResponse
	if err := c.post(ctx, "/chat/completions", reqBody, &chatResp); err != nil {
		return "", err
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	c.logger.Info("Chat completion successful",
		"model", snapshot.ChatModel,
		"tokens", chatResp.Usage.TotalTokens,
	)

	return chatResp.Choices[0].Message.Content, nil
}

// Moderate 对文本做内容审核
func (c *Client) Moderate(ctx context.Context, input string) (*ModerationResult, error) {
	var modResp ModerationResponse
	if err := c.post(ctx, "/moderations", ModerationRequest{Input: input}, &modResp); err != nil {
		return nil, err
	}

	if len(modResp.Results) == 0 {
		return nil, fmt.Errorf("moderation returned no results")
	}

	result := modResp.Results[0]
	if result.Flagged {
		c.logger.Warn("Moderation flagged input",
			"categories", flaggedCategories(result.Categories),
		)
	}
	return &result, nil
}

// flaggedCategories 提取值为 true 的分类名
func flaggedCategories(categories map[string]bool) []string {
	var flagged []string
	for name, hit := range categories {
		if hit {
			flagged = append(flagged, name)
		}
	}
	return flagged
}

// GenerateImage 生成图片，返回可下载的临时 URL
// URL 会过期，调用方必须下载后自行持久化
func (c *Client) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	snapshot := c.cfg.OpenAISnapshot()

	reqBody := ImageRequest{
		Model:  snapshot.ImageModel,
		Prompt: prompt,
		N:      1,
		Size:   size,
	}

	var imageResp ImageResponse
	if err := c.post(ctx, "/images/generations", reqBody, &imageResp); err != nil {
		return "", err
	}

	if len(imageResp.Data) == 0 || imageResp.Data[0].URL == "" {
		return "", fmt.Errorf("image generation returned no url")
	}

	c.logger.Info("Image generation successful",
		"model", snapshot.ImageModel,
	)

	return imageResp.Data[0].URL, nil
}
