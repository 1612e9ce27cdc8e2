package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/troupe/internal/model"
)

type CreateFileRequest struct {
	FileName      string `json:"file_name"`
	FilePath      string `json:"file_path"`
	FileSize      string `json:"file_size"`
	FileExtension string `json:"file_extension"`
	UploadedBy    string `json:"uploaded_by"`
}

type CreateAdditionalFileRequest struct {
	FileName      string `json:"file_name"`
	FilePath      string `json:"file_path"`
	FileSize      string `json:"file_size"`
	FileExtension string `json:"file_extension"`
	LastModified  string `json:"last_modified"`
	// optional file body, base64 in JSON
	Content []byte `json:"content"`
}

func (h *Handler) HandleListFiles(ctx *gin.Context) {
	files, err := h.app.FileService.ListRecords(ctx.Request.Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, files)
}

func (h *Handler) HandleCreateFile(ctx *gin.Context) {
	var req CreateFileRequest
	if err := bindJSON(ctx, &req, false); err != nil {
		h.fail(ctx, err)
		return
	}

	uploadedBy := req.UploadedBy
	if uploadedBy == "" {
		v, _ := viewer(ctx)
		uploadedBy = v.Username
	}
	file := &model.FileRecord{
		FileName:      req.FileName,
		FilePath:      req.FilePath,
		FileSize:      req.FileSize,
		FileExtension: req.FileExtension,
		UploadedBy:    uploadedBy,
	}
	if err := h.app.FileService.CreateRecord(ctx.Request.Context(), file); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "file record created",
		"id":      file.ID,
	})
}

func (h *Handler) HandleDeleteFile(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		h.fail(ctx, err)
		return
	}
	if err := h.app.FileService.DeleteRecord(ctx.Request.Context(), id); err != nil {
		h.fail(ctx, err)
		return
	}
	h.ok(ctx, "file record deleted")
}

func (h *Handler) HandleListAdditionalFiles(ctx *gin.Context) {
	files, err := h.app.FileService.ListAdditional(ctx.Request.Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, files)
}

func (h *Handler) HandleCreateAdditionalFile(ctx *gin.Context) {
	var req CreateAdditionalFileRequest
	if err := bindJSON(ctx, &req, false); err != nil {
		h.fail(ctx, err)
		return
	}

	file := &model.AdditionalFile{
		FileName:      req.FileName,
		FilePath:      req.FilePath,
		FileSize:      req.FileSize,
		FileExtension: req.FileExtension,
		LastModified:  req.LastModified,
	}
	if err := h.app.FileService.CreateAdditional(ctx.Request.Context(), file, req.Content); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "additional file created",
		"file_path": file.FilePath,
	})
}

// HandleDeleteAdditionalFile takes the stored file_path as the remainder of the URL.
func (h *Handler) HandleDeleteAdditionalFile(ctx *gin.Context) {
	filePath := strings.TrimPrefix(ctx.Param("path"), "/")
	if err := h.app.FileService.DeleteAdditional(ctx.Request.Context(), filePath); err != nil {
		h.fail(ctx, err)
		return
	}
	h.ok(ctx, "additional file deleted")
}
