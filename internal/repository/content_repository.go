package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roadside-service/internal/model"
)

// ContentRepository stores settings and legal documents.
type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) ListSettings(ctx context.Context) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error
	return settings, err
}

func (r *ContentRepository) UpsertSetting(ctx context.Context, setting *model.Setting) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(setting).Error
}

func (r *ContentRepository) GetLegalDocument(ctx context.Context, docType string) (*model.LegalDocument, error) {
	var doc model.LegalDocument
	if err := r.db.WithContext(ctx).Where("doc_type = ?", docType).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpsertLegalDocument creates the document of its type or replaces its text,
// bumping the version.
func (r *ContentRepository) UpsertLegalDocument(ctx context.Context, doc *model.LegalDocument) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "doc_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"title":      gorm.Expr("EXCLUDED.title"),
			"content":    gorm.Expr("EXCLUDED.content"),
			"version":    gorm.Expr("legal_documents.version + 1"),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(doc).Error
}
