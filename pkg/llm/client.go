// Package llm provides a client for interacting with Large Language Models.
package llm

import (
	"context"
	"fmt"

	"eduassist-go/internal/config"
	"eduassist-go/internal/model"
)

// StreamHandler 接收流式生成过程中累积到目前为止的完整文本。
type StreamHandler func(accumulated string) error

// ChatRequest 是一次对话请求。
type ChatRequest struct {
	// History 是新消息之前的会话记录，客户端自行截取窗口。
	History           []model.Message
	Text              string
	Attachments       []model.Attachment
	Settings          model.ChatSettings
	SystemInstruction string
}

// ChatResult 是流式生成结束后的最终结果。
type ChatResult struct {
	Text              string
	GroundingMetadata *model.GroundingMetadata
}

// Client defines the interface for an LLM client.
type Client interface {
	// StreamChat 以流式方式生成回答，每个分块到达时回调 onChunk。
	StreamChat(ctx context.Context, req ChatRequest, onChunk StreamHandler) (*ChatResult, error)
	// GenerateImage 根据提示词生成图片，返回 data URI。
	GenerateImage(ctx context.Context, prompt string, ratio model.AspectRatio) (string, error)
	// EditImage 按提示词编辑给定图片，返回 data URI。
	EditImage(ctx context.Context, prompt string, image model.Attachment) (string, error)
	// GenerateSpeech 把文本合成为语音，返回 base64 编码的 PCM 音频。
	GenerateSpeech(ctx context.Context, text, language string) (string, error)
	// ChatIdentity 根据最近的对话给 AI 起一个 2-3 个词的角色名。
	ChatIdentity(ctx context.Context, recent []model.Message) (string, error)
}

// NewClient creates a new LLM client based on the provider in the config.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "gemini":
		return newGeminiClient(ctx, cfg)
	case "mock", "":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
