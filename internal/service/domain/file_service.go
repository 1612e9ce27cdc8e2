package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/internal/model"
	"github.com/qs-lzh/troupe/internal/repository"
	"github.com/qs-lzh/troupe/internal/service"
	"github.com/qs-lzh/troupe/internal/storage"
)

type FileService interface {
	CreateRecord(ctx context.Context, file *model.FileRecord) error
	ListRecords(ctx context.Context) ([]model.FileRecord, error)
	DeleteRecord(ctx context.Context, id uint) error

	// CreateAdditional stores the record. When content is non-empty it is uploaded first
	// and the generated object key becomes the record's FilePath. A record without
	// content may not reuse a FilePath another record already holds.
	CreateAdditional(ctx context.Context, file *model.AdditionalFile, content []byte) error
	ListAdditional(ctx context.Context) ([]model.AdditionalFile, error)
	DeleteAdditional(ctx context.Context, filePath string) error
}

type fileService struct {
	repo    repository.FileRepo
	objects storage.ObjectStore
	logger  *zap.Logger
}

var _ FileService = (*fileService)(nil)

func NewFileService(fileRepo repository.FileRepo, objects storage.ObjectStore, logger *zap.Logger) *fileService {
	return &fileService{
		repo:    fileRepo,
		objects: objects,
		logger:  logger,
	}
}

func (s *fileService) CreateRecord(ctx context.Context, file *model.FileRecord) error {
	file.FileName = strings.TrimSpace(file.FileName)
	if file.FileName == "" {
		return service.Validationf("file name is required")
	}
	if file.FileExtension == "" {
		file.FileExtension = path.Ext(file.FileName)
	}
	file.UploadedAt = time.Now().UTC()
	if err := s.repo.CreateRecord(ctx, file); err != nil {
		return fmt.Errorf("create file record: %w", err)
	}
	return nil
}

func (s *fileService) ListRecords(ctx context.Context) ([]model.FileRecord, error) {
	files, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}
	return files, nil
}

func (s *fileService) DeleteRecord(ctx context.Context, id uint) error {
	n, err := s.repo.DeleteRecord(ctx, id)
	if err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}
	if n == 0 {
		return service.NotFoundf("file %d", id)
	}
	return nil
}

func (s *fileService) CreateAdditional(ctx context.Context, file *model.AdditionalFile, content []byte) error {
	file.FileName = strings.TrimSpace(file.FileName)
	if file.FileName == "" {
		return service.Validationf("file name is required")
	}
	if file.FileExtension == "" {
		file.FileExtension = path.Ext(file.FileName)
	}

	if len(content) > 0 {
		key := uuid.NewString() + file.FileExtension
		contentType := http.DetectContentType(content)
		if err := s.objects.Put(ctx, key, bytes.NewReader(content), int64(len(content)), contentType); err != nil {
			return fmt.Errorf("store file content: %w", err)
		}
		file.FilePath = key
		file.StoredContent = true
		if file.FileSize == "" {
			file.FileSize = strconv.Itoa(len(content))
		}
	} else {
		file.StoredContent = false
		if err := s.checkPathFree(ctx, file.FilePath); err != nil {
			return err
		}
	}

	file.CreatedDate = time.Now().UTC()
	if err := s.repo.CreateAdditional(ctx, file); err != nil {
		if len(content) > 0 {
			if delErr := s.objects.Delete(ctx, file.FilePath); delErr != nil {
				s.logger.Warn("orphaned file content", zap.String("key", file.FilePath), zap.Error(delErr))
			}
		}
		return fmt.Errorf("create additional file: %w", err)
	}
	return nil
}

func (s *fileService) checkPathFree(ctx context.Context, filePath string) error {
	if filePath == "" {
		return nil
	}
	_, err := s.repo.GetAdditionalByPath(ctx, filePath)
	if err == nil {
		return service.Conflictf("file path %s is already in use", filePath)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check file path: %w", err)
	}
	return nil
}

func (s *fileService) ListAdditional(ctx context.Context) ([]model.AdditionalFile, error) {
	files, err := s.repo.ListAdditional(ctx)
	if err != nil {
		return nil, fmt.Errorf("list additional files: %w", err)
	}
	return files, nil
}

// DeleteAdditional removes the record, and its content when the record uploaded it.
func (s *fileService) DeleteAdditional(ctx context.Context, filePath string) error {
	if strings.TrimSpace(filePath) == "" {
		return service.Validationf("file path is required")
	}
	file, err := s.repo.GetAdditionalByPath(ctx, filePath)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return service.NotFoundf("additional file %s", filePath)
		}
		return fmt.Errorf("get additional file: %w", err)
	}
	if _, err := s.repo.DeleteAdditional(ctx, file.ID); err != nil {
		return fmt.Errorf("delete additional file: %w", err)
	}
	if !file.StoredContent {
		return nil
	}
	if err := s.objects.Delete(ctx, file.FilePath); err != nil {
		s.logger.Warn("failed to delete file content", zap.String("key", file.FilePath), zap.Error(err))
	}
	return nil
}
