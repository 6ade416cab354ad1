package model

// ThemeMode 是界面主题。
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeCustom ThemeMode = "custom"
	ThemeLiquid ThemeMode = "liquid"
)

// Theme 是持久化的主题偏好。
type Theme struct {
	Mode             ThemeMode `json:"mode"`
	CustomImage      string    `json:"customImage,omitempty"`
	SnowingEnabled   bool      `json:"snowingEnabled"`
	GalaxyEnabled    bool      `json:"galaxyEnabled"`
	ChristmasEnabled bool      `json:"christmasEnabled"`
}

// DefaultTheme 默认使用深色 Galaxy 主题。
func DefaultTheme() Theme {
	return Theme{Mode: ThemeDark, GalaxyEnabled: true}
}

// Valid 判断主题模式是否合法。
func (m ThemeMode) Valid() bool {
	switch m {
	case ThemeLight, ThemeDark, ThemeCustom, ThemeLiquid:
		return true
	}
	return false
}

// Language 是界面语言代码，auto 表示跟随浏览器。
type Language string

const DefaultLanguage Language = "en"

var supportedLanguages = map[Language]struct{}{
	"auto": {}, "en": {}, "es": {}, "fr": {}, "de": {}, "ja": {}, "hi": {}, "zh": {},
	"mr": {}, "pa": {}, "te": {}, "ta": {}, "kn": {}, "bn": {},
	"ar": {}, "pt": {}, "ru": {}, "it": {}, "ko": {}, "tr": {}, "sw": {}, "nl": {}, "th": {},
}

// Valid 判断语言是否在支持列表中。
func (l Language) Valid() bool {
	_, ok := supportedLanguages[l]
	return ok
}

// InputMode 决定一次发送走哪条生成链路。
type InputMode string

const (
	InputText      InputMode = "text"
	InputImageEdit InputMode = "image-edit"
	InputImageGen  InputMode = "image-gen"
)

// ModelMode 是速度与推理深度之间的取舍。
type ModelMode string

const (
	ModelFast     ModelMode = "fast"
	ModelBalanced ModelMode = "balanced"
	ModelThinking ModelMode = "thinking"
)

// AspectRatio 是图片生成支持的宽高比。
type AspectRatio string

// ChatSettings 是输入框上的生成开关。
type ChatSettings struct {
	ModelMode           ModelMode   `json:"modelMode"`
	EnableSearch        bool        `json:"enableSearch"`
	EnableMaps          bool        `json:"enableMaps"`
	EnableImageEditing  bool        `json:"enableImageEditing"`
	EnableAudioResponse bool        `json:"enableAudioResponse"`
	ImageAspectRatio    AspectRatio `json:"imageAspectRatio"`
}

// DefaultChatSettings 对应界面的初始设置。
func DefaultChatSettings() ChatSettings {
	return ChatSettings{ModelMode: ModelBalanced, ImageAspectRatio: "1:1"}
}
