package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"eduassist-go/internal/model"
)

// 1x1 透明 PNG，mock 模式下作为生成的图片返回。
const mockPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// MockClient 是不访问网络的确定性实现，用于本地开发和 provider=mock。
// 它把用户的问题按词回显为流式回答。
type MockClient struct{}

// NewMockClient 创建一个 MockClient。
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) StreamChat(ctx context.Context, req ChatRequest, onChunk StreamHandler) (*ChatResult, error) {
	if strings.TrimSpace(req.Text) == "" && len(req.Attachments) == 0 {
		return nil, errors.New("empty prompt")
	}
	words := strings.Fields("You asked: " + req.Text)
	var full strings.Builder
	for i, w := range words {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			full.WriteString(" ")
		}
		full.WriteString(w)
		if onChunk != nil {
			if err := onChunk(full.String()); err != nil {
				return nil, err
			}
		}
	}
	return &ChatResult{Text: full.String()}, nil
}

func (m *MockClient) GenerateImage(ctx context.Context, prompt string, ratio model.AspectRatio) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("empty prompt")
	}
	return "data:image/png;base64," + mockPNG, nil
}

func (m *MockClient) EditImage(ctx context.Context, prompt string, image model.Attachment) (string, error) {
	if image.Data == "" {
		return "", errors.New("edit failed")
	}
	mime := image.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + image.Data, nil
}

func (m *MockClient) GenerateSpeech(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("audio generation failed")
	}
	// 每个字符对应 16 位静音采样
	return base64.StdEncoding.EncodeToString(make([]byte, 2*len(text))), nil
}

func (m *MockClient) ChatIdentity(ctx context.Context, recent []model.Message) (string, error) {
	return "EduAssist AI", nil
}
