package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"roadside-service/internal/model"
)

type ContentService struct {
	content ContentStore
}

func NewContentService(content ContentStore) *ContentService {
	return &ContentService{content: content}
}

func (s *ContentService) ListSettings(ctx context.Context, principal model.Principal) ([]model.Setting, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.content.ListSettings(ctx)
}

func (s *ContentService) PutSetting(ctx context.Context, principal model.Principal, key, value string) (*model.Setting, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	key = strings.TrimSpace(key)
	if key == "" || len(key) > 128 {
		return nil, invalidInput("setting key must be 1 to 128 characters")
	}

	updatedBy := principal.UserID
	setting := &model.Setting{Key: key, Value: value, UpdatedBy: &updatedBy}
	if err := s.content.UpsertSetting(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// GetLegalDocument is public.
func (s *ContentService) GetLegalDocument(ctx context.Context, docType string) (*model.LegalDocument, error) {
	doc, err := s.content.GetLegalDocument(ctx, strings.ToLower(strings.TrimSpace(docType)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *ContentService) PutLegalDocument(ctx context.Context, principal model.Principal, docType, title, content string) (*model.LegalDocument, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	docType = strings.ToLower(strings.TrimSpace(docType))
	title = strings.TrimSpace(title)
	if docType == "" || title == "" || strings.TrimSpace(content) == "" {
		return nil, invalidInput("type, title and content are required")
	}

	if err := s.content.UpsertLegalDocument(ctx, &model.LegalDocument{
		DocType: docType,
		Title:   title,
		Content: content,
		Version: 1,
	}); err != nil {
		return nil, err
	}
	return s.GetLegalDocument(ctx, docType)
}
