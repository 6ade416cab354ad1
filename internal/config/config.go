// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	UI            UIConfig            `mapstructure:"ui"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// StorageConfig 选择持久化键值存储的后端。
// Backend 取值 memory | redis | mysql | sqlite | minio。
type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	QuotaBytes int64  `mapstructure:"quota_bytes"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL  MySQLConfig  `mapstructure:"mysql"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SQLiteConfig 存储嵌入式 SQLite 的文件路径。
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LLMConfig 存储生成式 AI 后端相关的配置。
// Provider 取值 gemini | mock。
type LLMConfig struct {
	Provider      string              `mapstructure:"provider"`
	APIKey        string              `mapstructure:"api_key"`
	Models        LLMModelsConfig     `mapstructure:"models"`
	HistoryWindow int                 `mapstructure:"history_window"`
	Generation    LLMGenerationConfig `mapstructure:"generation"`
}

// LLMModelsConfig 按用途配置模型名。
type LLMModelsConfig struct {
	Fast     string `mapstructure:"fast"`
	Balanced string `mapstructure:"balanced"`
	Thinking string `mapstructure:"thinking"`
	Maps     string `mapstructure:"maps"`
	Image    string `mapstructure:"image"`
	ImagePro string `mapstructure:"image_pro"`
	TTS      string `mapstructure:"tts"`
	Identity string `mapstructure:"identity"`
}

// LLMGenerationConfig 配置生成相关参数（可选）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// UIConfig 存储界面文案，未配置时使用英文默认值。
type UIConfig struct {
	DefaultChatTitle   string `mapstructure:"default_chat_title"`
	NewChatTitle       string `mapstructure:"new_chat_title"`
	GuideSessionTitle  string `mapstructure:"guide_session_title"`
	PreviousChatTitle  string `mapstructure:"previous_chat_title"`
	MediaRemovedMarker string `mapstructure:"media_removed_marker"`
	DefaultIdentity    string `mapstructure:"default_identity"`
	Welcome            string `mapstructure:"welcome"`
	WelcomeTeacher     string `mapstructure:"welcome_teacher"`
	GuideWelcome       string `mapstructure:"guide_welcome"`
	GuideCapabilities  string `mapstructure:"guide_capabilities"`
	GuideReady         string `mapstructure:"guide_ready"`
	SystemInstruction  string `mapstructure:"system_instruction"`
}

// SetDefaults 为 viper 注册默认值，配置文件中缺失的键会回落到这里。
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.quota_bytes", 5*1024*1024)
	v.SetDefault("storage.key_prefix", "eduassist:")
	v.SetDefault("database.sqlite.path", "data/eduassist.db")
	v.SetDefault("minio.bucket_name", "eduassist")

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("jwt.refresh_token_expire_days", 7)

	v.SetDefault("llm.provider", "mock")
	v.SetDefault("llm.history_window", 6)
	v.SetDefault("llm.models.fast", "gemini-flash-lite-latest")
	v.SetDefault("llm.models.balanced", "gemini-3-flash-preview")
	v.SetDefault("llm.models.thinking", "gemini-3-pro-preview")
	v.SetDefault("llm.models.maps", "gemini-2.5-flash")
	v.SetDefault("llm.models.image", "gemini-2.5-flash-image")
	v.SetDefault("llm.models.image_pro", "gemini-3-pro-image-preview")
	v.SetDefault("llm.models.tts", "gemini-2.5-flash-preview-tts")
	v.SetDefault("llm.models.identity", "gemini-flash-lite-latest")

	v.SetDefault("kafka.topic", "eduassist-transcripts")
	v.SetDefault("elasticsearch.index_name", "eduassist_messages")

	ui := DefaultUI()
	v.SetDefault("ui.default_chat_title", ui.DefaultChatTitle)
	v.SetDefault("ui.new_chat_title", ui.NewChatTitle)
	v.SetDefault("ui.guide_session_title", ui.GuideSessionTitle)
	v.SetDefault("ui.previous_chat_title", ui.PreviousChatTitle)
	v.SetDefault("ui.media_removed_marker", ui.MediaRemovedMarker)
	v.SetDefault("ui.default_identity", ui.DefaultIdentity)
	v.SetDefault("ui.welcome", ui.Welcome)
	v.SetDefault("ui.welcome_teacher", ui.WelcomeTeacher)
	v.SetDefault("ui.guide_welcome", ui.GuideWelcome)
	v.SetDefault("ui.guide_capabilities", ui.GuideCapabilities)
	v.SetDefault("ui.guide_ready", ui.GuideReady)
	v.SetDefault("ui.system_instruction", ui.SystemInstruction)
}

// DefaultUI 返回内置的英文文案。
func DefaultUI() UIConfig {
	return UIConfig{
		DefaultChatTitle:   "Chat",
		NewChatTitle:       "New Chat",
		GuideSessionTitle:  "Guide",
		PreviousChatTitle:  "Previous Chat",
		MediaRemovedMarker: "[Media removed to save space]",
		DefaultIdentity:    "EduAssist AI",
		Welcome:            "Hello {name}! I'm EduAssist, your study companion. What shall we learn today?",
		WelcomeTeacher:     "Hello Teacher {name}! How can I help you prepare today?",
		GuideWelcome:       "👋 Hi{name}! Welcome to EduAssist AI.",
		GuideCapabilities:  "I can explain concepts, solve problems step by step, generate and edit images, and read answers aloud.",
		GuideReady:         "Ready? Ask me anything to get started!",
		SystemInstruction:  "You are EduAssist, a friendly and patient educational assistant. Explain clearly, check understanding, and encourage the learner.",
	}
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}

// Load 读取 configPath 并返回解析后的配置，不修改全局变量。
func Load(configPath string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return cfg, nil
}
