package service

import (
	"context"
	"errors"

	"eduassist-go/internal/model"
	"eduassist-go/internal/repository"
)

var (
	ErrInvalidTheme    = errors.New("invalid theme mode")
	ErrInvalidLanguage = errors.New("unsupported language")
)

// PreferenceService 管理用户的主题和语言偏好。
type PreferenceService interface {
	GetTheme(ctx context.Context, userID string) model.Theme
	SetTheme(ctx context.Context, userID string, theme model.Theme) (model.Theme, error)
	GetLanguage(ctx context.Context, userID string) model.Language
	SetLanguage(ctx context.Context, userID string, lang model.Language) (model.Language, error)
}

type preferenceService struct {
	prefs repository.PreferenceRepository
}

// NewPreferenceService 创建一个新的 PreferenceService 实例。
func NewPreferenceService(prefs repository.PreferenceRepository) PreferenceService {
	return &preferenceService{prefs: prefs}
}

func (s *preferenceService) GetTheme(ctx context.Context, userID string) model.Theme {
	return s.prefs.LoadTheme(ctx, userID)
}

func (s *preferenceService) SetTheme(ctx context.Context, userID string, theme model.Theme) (model.Theme, error) {
	if !theme.Mode.Valid() {
		return model.Theme{}, ErrInvalidTheme
	}
	if err := s.prefs.SaveTheme(ctx, userID, theme); err != nil {
		return model.Theme{}, err
	}
	return theme, nil
}

func (s *preferenceService) GetLanguage(ctx context.Context, userID string) model.Language {
	return s.prefs.LoadLanguage(ctx, userID)
}

func (s *preferenceService) SetLanguage(ctx context.Context, userID string, lang model.Language) (model.Language, error) {
	if !lang.Valid() {
		return "", ErrInvalidLanguage
	}
	if err := s.prefs.SaveLanguage(ctx, userID, lang); err != nil {
		return "", err
	}
	return lang, nil
}
