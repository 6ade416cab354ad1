package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"eduassist-go/internal/config"
	"eduassist-go/internal/model"
)

// maxTitleRunes 是派生标题的最大长度。
const maxTitleRunes = 60

// WelcomeMessageID 是新会话欢迎语的固定 ID。
const WelcomeMessageID = "welcome-msg"

var emphasisChars = regexp.MustCompile("[*_~`#]")

var variationModifiers = []string{
	"cinematic masterwork", "highly intricate details", "unique perspective",
	"dramatic lighting", "vibrant color palette", "sharp artistic focus",
	"creative composition", "premium textures", "professional digital art style",
}

// DeriveTitle 由用户的第一条消息生成会话标题：去掉 markdown 强调符号，
// 只取第一行并截断到 60 个字符；结果为空时返回 fallback。
func DeriveTitle(text, fallback string) string {
	t := strings.TrimSpace(emphasisChars.ReplaceAllString(text, ""))
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(t)
	if r := []rune(t); len(r) > maxTitleRunes {
		t = string(r[:maxTitleRunes])
	}
	if t == "" {
		return fallback
	}
	return t
}

// variationPrompt 给图片提示词追加随机修饰语和编号，使每次生成都有变化。
func variationPrompt(text string, intN func(int) int) string {
	modifier := variationModifiers[intN(len(variationModifiers))]
	return fmt.Sprintf("%s, %s (variation #%d)", text, modifier, intN(100000))
}

// welcomeMessage 是新会话中唯一的欢迎消息，教师看到单独的欢迎语。
func welcomeMessage(ui config.UIConfig, user model.User, now time.Time) model.Message {
	text := ui.Welcome
	if user.Role == model.RoleTeacher && ui.WelcomeTeacher != "" {
		text = ui.WelcomeTeacher
	}
	return model.Message{
		ID:        WelcomeMessageID,
		Text:      strings.Replace(text, "{name}", user.DisplayName(), 1),
		Sender:    model.SenderBot,
		Timestamp: now,
	}
}

// guideMessages 是首次访问时引导会话的三条消息。
func guideMessages(ui config.UIConfig, user model.User, now time.Time, newID func() string) []model.Message {
	name := user.DisplayName()
	if name != "" {
		name = " " + name
	}
	return []model.Message{
		{ID: newID(), Text: strings.Replace(ui.GuideWelcome, "{name}", name, 1), Sender: model.SenderBot, Timestamp: now.Add(-2000 * time.Millisecond)},
		{ID: newID(), Text: ui.GuideCapabilities, Sender: model.SenderBot, Timestamp: now.Add(-1500 * time.Millisecond)},
		{ID: newID(), Text: ui.GuideReady, Sender: model.SenderBot, Timestamp: now},
	}
}

// snippet 截断过长的消息文本用于检索结果展示。
func snippet(text string, n int) string {
	r := []rune(strings.TrimSpace(text))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}
