package model

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"deckcraft-backend/internal/config"
	"deckcraft-backend/pkg/logger"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
	openai "github.com/sashabaranov/go-openai"
)

// NewOutlineModel 创建大纲生成使用的对话模型，按配置选择提供方
func NewOutlineModel(ctx context.Context, cfg *config.Config) einoModel.ChatModel {
	switch cfg.Model.Provider {
	case "doubao":
		return createDoubaoModel(ctx, cfg.Doubao)
	case "qwen":
		return createQwenModel(ctx, cfg.Qwen)
	case "openai", "":
		return createOpenAIModel(ctx, cfg.OpenAI)
	default:
		log.Fatalf("Unsupported model provider: %s", cfg.Model.Provider)
		return nil
	}
}

func createOpenAIModel(ctx context.Context, cfg config.OpenAIConfig) einoModel.ChatModel {
	logger.Infof("Using OpenAI model: %s", cfg.Model)

	chatModel, err := newOpenAIChatModel(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create OpenAI model: %v", err)
	}

	return chatModel
}

func createDoubaoModel(ctx context.Context, cfg config.DoubaoConfig) einoModel.ChatModel {
	logger.Infof("Using Doubao model: %s", cfg.Model)

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
		CustomHeader: map[string]string{
			"X-Ark-Thinking-Mode": "disable",
		},
	})
	if err != nil {
		log.Fatalf("Failed to create Doubao model: %v", err)
	}

	return chatModel
}

func createQwenModel(ctx context.Context, cfg config.QwenConfig) einoModel.ChatModel {
	logger.Infof("Using Qwen model: %s, BaseURL: %s", cfg.Model, cfg.BaseURL)

	// 带调试功能的 HTTPClient（基于配置开关）
	httpClient := &http.Client{
		Transport: NewQwenDebugTransport(nil, cfg.DebugRequest),
		Timeout:   cfg.Timeout,
	}

	chatModel, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   &cfg.MaxTokens,
		Temperature: &cfg.Temperature,
		TopP:        &cfg.TopP,
		Timeout:     cfg.Timeout,
		HTTPClient:  httpClient,
	})
	if err != nil {
		log.Fatalf("Failed to create Qwen model: %v", err)
	}

	return chatModel
}

// IsOverloaded 判断上游错误是否为可重试的限流/过载。
// openai 适配器暴露结构化状态码，其余提供方按错误文本兜底判断。
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "too many requests", "overloaded", "429", "503"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
