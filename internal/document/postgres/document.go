package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/leave-management/internal/core/database"
	documentDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/document"
	"github.com/frahmantamala/leave-management/internal/document"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) document.RepositoryAPI {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, d *documentDatamodel.Document) error {
	return database.Conn(ctx, r.db).Create(d).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*documentDatamodel.Document, error) {
	var d documentDatamodel.Document
	err := database.Conn(ctx, r.db).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepository) GetByIDs(ctx context.Context, ids []int64) ([]*documentDatamodel.Document, error) {
	var rows []*documentDatamodel.Document
	if len(ids) == 0 {
		return rows, nil
	}
	err := database.Conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID int64) ([]*documentDatamodel.Document, error) {
	var rows []*documentDatamodel.Document
	err := database.Conn(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*documentDatamodel.Document, error) {
	var rows []*documentDatamodel.Document
	err := database.Conn(ctx, r.db).Where("leave_application_id = ?", applicationID).Order("id").Find(&rows).Error
	return rows, err
}

func (r *DocumentRepository) AttachUnattached(ctx context.Context, ids []int64, applicationID, ownerID int64) (int64, error) {
	res := database.Conn(ctx, r.db).Model(&documentDatamodel.Document{}).
		Where("id IN ? AND user_id = ? AND leave_application_id IS NULL", ids, ownerID).
		Update("leave_application_id", applicationID)
	return res.RowsAffected, res.Error
}

func (r *DocumentRepository) DeleteUnattached(ctx context.Context, id int64) (bool, error) {
	res := database.Conn(ctx, r.db).
		Where("id = ? AND leave_application_id IS NULL", id).
		Delete(&documentDatamodel.Document{})
	return res.RowsAffected == 1, res.Error
}
