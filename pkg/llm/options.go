package llm

import (
	"strings"

	"eduassist-go/internal/config"
	"eduassist-go/internal/model"
)

// ThinkingBudget 是 thinking 模式下的推理 token 预算。
const ThinkingBudget int32 = 32768

// SupportedAspectRatios 是图片生成接受的宽高比。
var SupportedAspectRatios = []model.AspectRatio{"1:1", "3:4", "4:3", "9:16", "16:9"}

// ModelChoice 是一次对话选用的模型及其推理预算（0 表示不设置）。
type ModelChoice struct {
	Name           string
	ThinkingBudget int32
}

// SelectModel 根据设置和附件选择模型：
// 带图片或 thinking 模式用 thinking，fast 模式用 fast，否则 balanced；开启地图时总是用 maps。
func SelectModel(models config.LLMModelsConfig, settings model.ChatSettings, attachments []model.Attachment) ModelChoice {
	hasImage := HasImageAttachment(attachments)

	choice := ModelChoice{Name: models.Balanced}
	switch {
	case hasImage || settings.ModelMode == model.ModelThinking:
		choice.Name = models.Thinking
	case settings.ModelMode == model.ModelFast:
		choice.Name = models.Fast
	}
	if settings.EnableMaps {
		choice.Name = models.Maps
	}
	if settings.ModelMode == model.ModelThinking && !hasImage && !settings.EnableMaps {
		choice.ThinkingBudget = ThinkingBudget
	}
	return choice
}

// HasImageAttachment 判断附件中是否有图片。
func HasImageAttachment(attachments []model.Attachment) bool {
	for _, a := range attachments {
		if a.Type == model.AttachmentImage {
			return true
		}
	}
	return false
}

// HistoryWindow 取最后 n 条消息，再去掉出错消息和图片消息。
func HistoryWindow(history []model.Message, n int) []model.Message {
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]model.Message, 0, len(history))
	for _, m := range history {
		if m.IsError || m.Image != "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// NormalizeAspectRatio 把不支持的宽高比回落到 1:1。
func NormalizeAspectRatio(r model.AspectRatio) model.AspectRatio {
	for _, s := range SupportedAspectRatios {
		if r == s {
			return r
		}
	}
	return "1:1"
}

// isAccessError 判断错误是否为权限或模型不可用，这类错误会改用 pro 图片模型重试。
func isAccessError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "403") || strings.Contains(s, "permission_denied") || strings.Contains(s, "not_found")
}

// identityPrompt 构造角色名生成的提示词，只使用最后 3 条消息。
func identityPrompt(recent []model.Message) string {
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		lines = append(lines, string(m.Sender)+": "+m.Text)
	}
	return `Based on the following conversation, give the AI a short 2-3 word "Persona Name" or "Current Identity" that describes its role right now (e.g., "Math Tutor", "Poetry Guide", "Science Lab", "Tech Assistant"). Output ONLY the 2-3 words.` +
		"\n\n" + strings.Join(lines, "\n")
}

func speechPrompt(text string) string {
	return "Speak this clearly in a very friendly, cheerful, warm, and encouraging tone: " + text
}
