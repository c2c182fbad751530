package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrNotConfigured 缺少 LLM 配置（API token）。调度器把它当作
// 该任务的瞬时失败处理，不会让循环退出。
var ErrNotConfigured = errors.New("llm service is not configured")

// ReplyGenerator 自动回复的文本生成能力。每次调用独立失败，
// 调用方负责超时控制（通过 ctx）。
type ReplyGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMService 调用 OpenAI 兼容的 chat completions 接口生成回复文本。
type LLMService struct {
	baseURL string
	token   string
	model   string
	client  *http.Client
}

// NewLLMService 从环境变量读取配置。token 缺失不在这里报错，
// 而是在调用点返回 ErrNotConfigured（对单个任务降级，不影响启动）。
func NewLLMService() *LLMService {
	return &LLMService{
		baseURL: os.Getenv("LLM_BASE_URL"),
		token:   os.Getenv("LLM_TOKEN"),
		model:   os.Getenv("LLM_MODEL"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const replySystemPrompt = "你是博客作者的评论助理。请针对读者的评论写一条简短、友好的回复，" +
	"不要超过三句话，直接输出回复正文。"

// Generate 生成一条回复。非 2xx 状态码、网络错误或响应体异常均返回错误。
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	if s.token == "" {
		return "", ErrNotConfigured
	}

	reqBody := ChatRequest{
		Model: s.model,
		Messages: []ChatMessage{
			{Role: "system", Content: replySystemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("编码请求失败: %w", err)
	}

	url := strings.TrimSuffix(s.baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP 状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("响应中没有生成结果")
	}

	reply := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("生成结果为空")
	}
	return reply, nil
}
