package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qs-lzh/troupe/internal/metrics"
	"github.com/qs-lzh/troupe/internal/model"
	"github.com/qs-lzh/troupe/internal/service"
	"github.com/qs-lzh/troupe/internal/service/domain"
)

const (
	requestIDHeader = "X-Request-Id"

	ctxRequestID = "request_id"
	ctxViewer    = "viewer"
	ctxToken     = "session_token"
)

var (
	errLoginRequired     = fmt.Errorf("%w: login required", service.ErrUnauthorized)
	errOrganizerRequired = fmt.Errorf("%w: organizer role required", service.ErrForbidden)
)

// RequestLogger tags the request with an id, logs it once and records its metrics.
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(ctxRequestID, id)
		ctx.Header(requestIDHeader, id)

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := ctx.Writer.Status()
		latency := time.Since(start)
		metrics.ObserveRequest(ctx.Request.Method, route, strconv.Itoa(status), latency)
		h.app.Logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", ctx.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		)
	}
}

// Session resolves a bearer token into the viewer. Requests without a valid
// session continue anonymously; RequireSession rejects them where needed.
func (h *Handler) Session() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx.GetHeader("Authorization"))
		if token == "" {
			ctx.Next()
			return
		}
		user, err := h.app.IdentityService.CurrentUser(ctx.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				ctx.Next()
				return
			}
			h.fail(ctx, err)
			return
		}
		ctx.Set(ctxToken, token)
		ctx.Set(ctxViewer, domain.Viewer{Username: user.Username, Role: user.Role})
		ctx.Next()
	}
}

func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := viewer(ctx); !ok {
			h.fail(ctx, errLoginRequired)
			return
		}
		ctx.Next()
	}
}

func (h *Handler) RequireOrganizer() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		v, ok := viewer(ctx)
		if !ok {
			h.fail(ctx, errLoginRequired)
			return
		}
		if v.Role != model.RoleOrganizer {
			h.fail(ctx, errOrganizerRequired)
			return
		}
		ctx.Next()
	}
}

func viewer(ctx *gin.Context) (domain.Viewer, bool) {
	v, ok := ctx.Get(ctxViewer)
	if !ok {
		return domain.Viewer{}, false
	}
	return v.(domain.Viewer), true
}

func requestID(ctx *gin.Context) string {
	return ctx.GetString(ctxRequestID)
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
