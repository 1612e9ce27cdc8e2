package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/model"
)

type FileRepo interface {
	CreateRecord(ctx context.Context, file *model.FileRecord) error
	ListRecords(ctx context.Context) ([]model.FileRecord, error)
	DeleteRecord(ctx context.Context, id uint) (int, error)

	CreateAdditional(ctx context.Context, file *model.AdditionalFile) error
	ListAdditional(ctx context.Context) ([]model.AdditionalFile, error)
	GetAdditionalByPath(ctx context.Context, path string) (*model.AdditionalFile, error)
	DeleteAdditional(ctx context.Context, id uint) (int, error)
}

type fileRepoGorm struct {
	db *gorm.DB
}

var _ FileRepo = (*fileRepoGorm)(nil)

func NewFileRepoGorm(db *gorm.DB) *fileRepoGorm {
	return &fileRepoGorm{
		db: db,
	}
}

func (r *fileRepoGorm) CreateRecord(ctx context.Context, file *model.FileRecord) error {
	return gorm.G[model.FileRecord](r.db).Create(ctx, file)
}

func (r *fileRepoGorm) ListRecords(ctx context.Context) ([]model.FileRecord, error) {
	files, err := gorm.G[model.FileRecord](r.db).Order("uploaded_at DESC, id DESC").Find(ctx)
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepoGorm) DeleteRecord(ctx context.Context, id uint) (int, error) {
	return gorm.G[model.FileRecord](r.db).Where("id = ?", id).Delete(ctx)
}

func (r *fileRepoGorm) CreateAdditional(ctx context.Context, file *model.AdditionalFile) error {
	return gorm.G[model.AdditionalFile](r.db).Create(ctx, file)
}

func (r *fileRepoGorm) ListAdditional(ctx context.Context) ([]model.AdditionalFile, error) {
	files, err := gorm.G[model.AdditionalFile](r.db).Order("created_date DESC, id DESC").Find(ctx)
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepoGorm) GetAdditionalByPath(ctx context.Context, path string) (*model.AdditionalFile, error) {
	file, err := gorm.G[model.AdditionalFile](r.db).Where("file_path = ?", path).First(ctx)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepoGorm) DeleteAdditional(ctx context.Context, id uint) (int, error) {
	return gorm.G[model.AdditionalFile](r.db).Where("id = ?", id).Delete(ctx)
}
