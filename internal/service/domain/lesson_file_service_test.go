package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/qs-lzh/troupe/internal/model"
	"github.com/qs-lzh/troupe/internal/repository"
	"github.com/qs-lzh/troupe/internal/service"
	"github.com/qs-lzh/troupe/internal/storage"
)

func TestLessons(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lessons := NewLessonService(repository.NewLessonRepoGorm(f.db))

	err := lessons.CreateLesson(ctx, &model.Lesson{Title: "Diction"})
	assert.True(t, errors.Is(err, service.ErrValidation))

	late := &model.Lesson{Title: "Stage combat", Date: "2026-11-02", Time: "18:00"}
	early := &model.Lesson{Title: "Diction", Date: "2026-11-02", Time: "10:00"}
	require.NoError(t, lessons.CreateLesson(ctx, late))
	require.NoError(t, lessons.CreateLesson(ctx, early))

	list, err := lessons.ListLessons(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Diction", list[0].Title)

	require.NoError(t, lessons.DeleteLesson(ctx, early.ID))
	err = lessons.DeleteLesson(ctx, early.ID)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestAdditionalFilesStoreContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dir := t.TempDir()
	objects, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	files := NewFileService(repository.NewFileRepoGorm(f.db), objects, zaptest.NewLogger(t))

	err = files.CreateAdditional(ctx, &model.AdditionalFile{}, nil)
	assert.True(t, errors.Is(err, service.ErrValidation))

	file := &model.AdditionalFile{FileName: "script.txt"}
	require.NoError(t, files.CreateAdditional(ctx, file, []byte("To be, or not to be")))
	assert.Equal(t, ".txt", file.FileExtension)
	assert.Equal(t, "19", file.FileSize)
	require.NotEmpty(t, file.FilePath)

	stored, err := os.ReadFile(filepath.Join(dir, file.FilePath))
	require.NoError(t, err)
	assert.Equal(t, "To be, or not to be", string(stored))

	list, err := files.ListAdditional(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, files.DeleteAdditional(ctx, file.FilePath))
	_, err = os.Stat(filepath.Join(dir, file.FilePath))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	err = files.DeleteAdditional(ctx, file.FilePath)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestAdditionalFileKeepsForeignContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dir := t.TempDir()
	objects, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	files := NewFileService(repository.NewFileRepoGorm(f.db), objects, zaptest.NewLogger(t))

	uploaded := &model.AdditionalFile{FileName: "script.txt"}
	require.NoError(t, files.CreateAdditional(ctx, uploaded, []byte("To be, or not to be")))
	assert.True(t, uploaded.StoredContent)

	// a metadata-only record may not claim the uploaded object's key
	err = files.CreateAdditional(ctx, &model.AdditionalFile{FileName: "copy.txt", FilePath: uploaded.FilePath}, nil)
	assert.True(t, errors.Is(err, service.ErrConflict))
	assert.Equal(t, int64(1), countRows(t, f, &model.AdditionalFile{}, "file_path = ?", uploaded.FilePath))

	// content placed by someone else stays when its metadata record goes
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("blocking notes"), 0o644))
	notes := &model.AdditionalFile{FileName: "notes.txt", FilePath: "notes.txt"}
	require.NoError(t, files.CreateAdditional(ctx, notes, nil))
	assert.False(t, notes.StoredContent)
	require.NoError(t, files.DeleteAdditional(ctx, "notes.txt"))
	kept, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "blocking notes", string(kept))

	stored, err := os.ReadFile(filepath.Join(dir, uploaded.FilePath))
	require.NoError(t, err)
	assert.Equal(t, "To be, or not to be", string(stored))

	require.NoError(t, files.DeleteAdditional(ctx, uploaded.FilePath))
	_, err = os.Stat(filepath.Join(dir, uploaded.FilePath))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objects, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	files := NewFileService(repository.NewFileRepoGorm(f.db), objects, zaptest.NewLogger(t))

	record := &model.FileRecord{FileName: "blocking.pdf", UploadedBy: "director"}
	require.NoError(t, files.CreateRecord(ctx, record))
	assert.Equal(t, ".pdf", record.FileExtension)
	assert.False(t, record.UploadedAt.IsZero())

	list, err := files.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, files.DeleteRecord(ctx, record.ID))
	assert.True(t, errors.Is(files.DeleteRecord(ctx, record.ID), service.ErrNotFound))
}
