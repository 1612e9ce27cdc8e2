package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/troupe/internal/app"
	"github.com/qs-lzh/troupe/internal/service"
)

type Handler struct {
	app *app.App
}

func NewHandler(app *app.App) *Handler {
	return &Handler{
		app: app,
	}
}

// fail writes the error body and status for err. Anything that is not a known
// domain error is treated as a storage failure and its cause is only logged.
func (h *Handler) fail(ctx *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "storage"
	switch {
	case errors.Is(err, service.ErrValidation):
		status, code = http.StatusBadRequest, "validation"
	case errors.Is(err, service.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		h.app.Logger.Error("request failed",
			zap.String("request_id", requestID(ctx)),
			zap.String("route", ctx.FullPath()),
			zap.Error(err),
		)
		message = "internal server error"
	}
	ctx.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

func (h *Handler) ok(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// bindJSON decodes the request body into req. An empty body is accepted when optional is set.
func bindJSON(ctx *gin.Context, req any, optional bool) error {
	if err := ctx.ShouldBindJSON(req); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return service.Validationf("invalid request format: %v", err)
	}
	return nil
}

func paramID(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.Validationf("invalid %s %q", name, ctx.Param(name))
	}
	return uint(id), nil
}
