package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"eduassist-go/internal/config"
	"eduassist-go/internal/model"
	"eduassist-go/pkg/log"
)

const defaultVoice = "Puck"

type geminiClient struct {
	cfg    config.LLMConfig
	client *genai.Client
}

func newGeminiClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm.api_key is required for the gemini provider")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &geminiClient{cfg: cfg, client: client}, nil
}

func (c *geminiClient) StreamChat(ctx context.Context, req ChatRequest, onChunk StreamHandler) (*ChatResult, error) {
	choice := SelectModel(c.cfg.Models, req.Settings, req.Attachments)

	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	c.applyGeneration(cfg)
	if choice.ThinkingBudget > 0 {
		budget := choice.ThinkingBudget
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}
	if req.Settings.EnableSearch {
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if req.Settings.EnableMaps {
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleMaps: &genai.GoogleMaps{}})
	}

	contents := historyContents(HistoryWindow(req.History, c.cfg.HistoryWindow))
	contents = append(contents, genai.NewContentFromParts(toParts(req.Text, req.Attachments), genai.RoleUser))

	var (
		full      strings.Builder
		grounding *model.GroundingMetadata
	)
	for chunk, err := range c.client.Models.GenerateContentStream(ctx, choice.Name, contents, cfg) {
		if err != nil {
			return nil, fmt.Errorf("failed to stream chat: %w", err)
		}
		if text := chunk.Text(); text != "" {
			full.WriteString(text)
			if onChunk != nil {
				if err := onChunk(full.String()); err != nil {
					return nil, err
				}
			}
		}
		if len(chunk.Candidates) > 0 && chunk.Candidates[0] != nil && chunk.Candidates[0].GroundingMetadata != nil {
			grounding = convertGrounding(chunk.Candidates[0].GroundingMetadata)
		}
	}
	return &ChatResult{Text: full.String(), GroundingMetadata: grounding}, nil
}

func (c *geminiClient) GenerateImage(ctx context.Context, prompt string, ratio model.AspectRatio) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: string(NormalizeAspectRatio(ratio))},
	}

	uri, err := c.generateImage(ctx, c.cfg.Models.Image, contents, cfg, true)
	if err != nil && isAccessError(err) {
		log.Warnf("Image model %s unavailable, retrying with %s: %v", c.cfg.Models.Image, c.cfg.Models.ImagePro, err)
		return c.generateImage(ctx, c.cfg.Models.ImagePro, contents, cfg, false)
	}
	return uri, err
}

func (c *geminiClient) EditImage(ctx context.Context, prompt string, image model.Attachment) (string, error) {
	data, err := base64.StdEncoding.DecodeString(image.Data)
	if err != nil {
		return "", fmt.Errorf("invalid image data: %w", err)
	}
	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(data, image.MimeType),
		genai.NewPartFromText(prompt),
	}, genai.RoleUser)}

	uri, err := c.generateImage(ctx, c.cfg.Models.Image, contents, nil, false)
	if err != nil && isAccessError(err) {
		log.Warnf("Image model %s unavailable for editing, retrying with %s: %v", c.cfg.Models.Image, c.cfg.Models.ImagePro, err)
		return c.generateImage(ctx, c.cfg.Models.ImagePro, contents, nil, false)
	}
	return uri, err
}

// generateImage 调用一次图片模型并取出第一张内联图片。
// checkFinish 为 true 时，非 STOP 的结束原因视为被拦截。
func (c *geminiClient) generateImage(ctx context.Context, modelName string, contents []*genai.Content, cfg *genai.GenerateContentConfig, checkFinish bool) (string, error) {
	res, err := c.client.Models.GenerateContent(ctx, modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate image: %w", err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0] == nil {
		return "", errors.New("no image was returned")
	}
	candidate := res.Candidates[0]
	if checkFinish && candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonStop {
		return "", fmt.Errorf("generation blocked: %s", candidate.FinishReason)
	}
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
			}
		}
	}
	return "", errors.New("no image was returned")
}

func (c *geminiClient) GenerateSpeech(ctx context.Context, text, language string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceFor(language)},
			},
		},
	}
	res, err := c.client.Models.GenerateContent(ctx, c.cfg.Models.TTS, genai.Text(speechPrompt(text)), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate speech: %w", err)
	}
	if len(res.Candidates) > 0 && res.Candidates[0] != nil && res.Candidates[0].Content != nil {
		parts := res.Candidates[0].Content.Parts
		if len(parts) > 0 && parts[0] != nil && parts[0].InlineData != nil && len(parts[0].InlineData.Data) > 0 {
			return base64.StdEncoding.EncodeToString(parts[0].InlineData.Data), nil
		}
	}
	return "", errors.New("audio generation failed")
}

func (c *geminiClient) ChatIdentity(ctx context.Context, recent []model.Message) (string, error) {
	temp := float32(0.5)
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: 10,
		Temperature:     &temp,
	}
	res, err := c.client.Models.GenerateContent(ctx, c.cfg.Models.Identity, genai.Text(identityPrompt(recent)), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate chat identity: %w", err)
	}
	return strings.TrimSpace(res.Text()), nil
}

// applyGeneration 从全局配置注入生成参数（若非零值）。
func (c *geminiClient) applyGeneration(cfg *genai.GenerateContentConfig) {
	if c.cfg.Generation.Temperature != 0 {
		t := float32(c.cfg.Generation.Temperature)
		cfg.Temperature = &t
	}
	if c.cfg.Generation.TopP != 0 {
		p := float32(c.cfg.Generation.TopP)
		cfg.TopP = &p
	}
	if c.cfg.Generation.MaxTokens != 0 {
		cfg.MaxOutputTokens = int32(c.cfg.Generation.MaxTokens)
	}
}

func historyContents(history []model.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := genai.Role(genai.RoleModel)
		if m.Sender == model.SenderUser {
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromParts(toParts(m.Text, m.Attachments), role))
	}
	return contents
}

// toParts 把文本和附件转换为请求的 parts，附件以内联数据发送。
func toParts(text string, attachments []model.Attachment) []*genai.Part {
	parts := make([]*genai.Part, 0, 1+len(attachments))
	if text != "" {
		parts = append(parts, genai.NewPartFromText(text))
	}
	for _, a := range attachments {
		data, err := base64.StdEncoding.DecodeString(a.Data)
		if err != nil || len(data) == 0 {
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(data, a.MimeType))
	}
	if len(parts) == 0 {
		parts = append(parts, genai.NewPartFromText(text))
	}
	return parts
}

func convertGrounding(gm *genai.GroundingMetadata) *model.GroundingMetadata {
	out := &model.GroundingMetadata{}
	for _, c := range gm.GroundingChunks {
		if c == nil {
			continue
		}
		var chunk model.GroundingChunk
		if c.Web != nil {
			chunk.Web = &model.GroundingSource{URI: c.Web.URI, Title: c.Web.Title}
		}
		if c.Maps != nil {
			chunk.Maps = &model.GroundingSource{URI: c.Maps.URI, Title: c.Maps.Title, PlaceID: c.Maps.PlaceID}
		}
		if chunk.Web != nil || chunk.Maps != nil {
			out.GroundingChunks = append(out.GroundingChunks, chunk)
		}
	}
	if len(out.GroundingChunks) == 0 {
		return nil
	}
	return out
}

func voiceFor(language string) string {
	voices := map[string]string{"en": "Puck", "hi": "Puck", "es": "Puck", "fr": "Puck"}
	if v, ok := voices[language]; ok {
		return v
	}
	return defaultVoice
}
