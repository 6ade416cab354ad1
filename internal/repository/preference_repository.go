package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eduassist-go/internal/model"
	"eduassist-go/pkg/kvstore"
)

// PreferenceRepository 定义了用户偏好与引导标记的持久化操作。
type PreferenceRepository interface {
	// LoadTheme 读取主题，未设置或损坏时返回默认主题。
	LoadTheme(ctx context.Context, userID string) model.Theme
	SaveTheme(ctx context.Context, userID string, theme model.Theme) error
	// LoadLanguage 读取语言，未设置或不支持时返回默认语言。
	LoadLanguage(ctx context.Context, userID string) model.Language
	SaveLanguage(ctx context.Context, userID string, lang model.Language) error
	IsOnboarded(ctx context.Context, userID string) bool
	MarkOnboarded(ctx context.Context, userID string) error
}

type preferenceRepository struct {
	store kvstore.Backend
	keys  Keys
}

// NewPreferenceRepository 创建一个新的 PreferenceRepository 实例。
func NewPreferenceRepository(store kvstore.Backend, keys Keys) PreferenceRepository {
	return &preferenceRepository{store: store, keys: keys}
}

func (r *preferenceRepository) LoadTheme(ctx context.Context, userID string) model.Theme {
	data, err := r.store.Scope(userID).Get(ctx, r.keys.Theme(userID))
	if err != nil {
		return model.DefaultTheme()
	}
	var theme model.Theme
	if err := json.Unmarshal([]byte(data), &theme); err != nil || !theme.Mode.Valid() {
		return model.DefaultTheme()
	}
	return theme
}

func (r *preferenceRepository) SaveTheme(ctx context.Context, userID string, theme model.Theme) error {
	b, err := json.Marshal(theme)
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}
	return r.store.Scope(userID).Set(ctx, r.keys.Theme(userID), string(b))
}

func (r *preferenceRepository) LoadLanguage(ctx context.Context, userID string) model.Language {
	data, err := r.store.Scope(userID).Get(ctx, r.keys.Language(userID))
	if err != nil {
		return model.DefaultLanguage
	}
	lang := model.Language(data)
	if !lang.Valid() {
		return model.DefaultLanguage
	}
	return lang
}

func (r *preferenceRepository) SaveLanguage(ctx context.Context, userID string, lang model.Language) error {
	return r.store.Scope(userID).Set(ctx, r.keys.Language(userID), string(lang))
}

func (r *preferenceRepository) IsOnboarded(ctx context.Context, userID string) bool {
	_, err := r.store.Scope(userID).Get(ctx, r.keys.Onboarded(userID))
	return !errors.Is(err, kvstore.ErrNotFound)
}

func (r *preferenceRepository) MarkOnboarded(ctx context.Context, userID string) error {
	return r.store.Scope(userID).Set(ctx, r.keys.Onboarded(userID), "true")
}
