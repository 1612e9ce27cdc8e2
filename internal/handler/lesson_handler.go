package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/troupe/internal/model"
)

type CreateLessonRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Location    string `json:"location"`
	CreatedBy   string `json:"created_by"`
}

func (h *Handler) HandleListLessons(ctx *gin.Context) {
	lessons, err := h.app.LessonService.ListLessons(ctx.Request.Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, lessons)
}

func (h *Handler) HandleCreateLesson(ctx *gin.Context) {
	var req CreateLessonRequest
	if err := bindJSON(ctx, &req, false); err != nil {
		h.fail(ctx, err)
		return
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		v, _ := viewer(ctx)
		createdBy = v.Username
	}
	lesson := &model.Lesson{
		Title:       req.Title,
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
		Location:    req.Location,
		CreatedBy:   createdBy,
	}
	if err := h.app.LessonService.CreateLesson(ctx.Request.Context(), lesson); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "lesson created",
		"id":      lesson.ID,
	})
}

func (h *Handler) HandleDeleteLesson(ctx *gin.Context) {
	id, err := paramID(ctx, "id")
	if err != nil {
		h.fail(ctx, err)
		return
	}
	if err := h.app.LessonService.DeleteLesson(ctx.Request.Context(), id); err != nil {
		h.fail(ctx, err)
		return
	}
	h.ok(ctx, "lesson deleted")
}
